package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PreritO/cartesia-hackathon/internal/config"
	"github.com/PreritO/cartesia-hackathon/internal/log"
	"github.com/PreritO/cartesia-hackathon/internal/store"
)

func newDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video into the cache without starting a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log.Init(cfg.LogLevel)
			logger := log.L()

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			videos, err := buildVideos(cfg, st, logger)
			if err != nil {
				return err
			}

			info, err := videos.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("downloaded %q\n", info.Title)
			fmt.Printf("  id:       %s\n", info.ID)
			fmt.Printf("  duration: %ds\n", info.Duration)
			fmt.Printf("  path:     %s\n", info.Path)
			return nil
		},
	}
}
