package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func intFlag(t *testing.T, flags []cli.Flag, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("flag %q not found", name)
	return nil
}

func stringFlag(t *testing.T, flags []cli.Flag, name string) *cli.StringFlag {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("flag %q not found", name)
	return nil
}

func TestIngestCommandFlags(t *testing.T) {
	cmd := &cli.Command{
		Name:   "ingest",
		Action: ingestCommand,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit"},
			&cli.IntFlag{Name: "batch-size", Value: 100},
			&cli.IntFlag{Name: "max-retries", Value: 3},
			&cli.StringFlag{Name: "checkpoint-db"},
		},
	}

	t.Run("batch-size has default value of 100", func(t *testing.T) {
		assert.Equal(t, 100, intFlag(t, cmd.Flags, "batch-size").Value)
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		assert.Equal(t, 3, intFlag(t, cmd.Flags, "max-retries").Value)
	})

	t.Run("limit defaults to zero meaning no cap", func(t *testing.T) {
		assert.Equal(t, 0, intFlag(t, cmd.Flags, "limit").Value)
	})

	t.Run("checkpoint-db defaults to disabled", func(t *testing.T) {
		assert.Empty(t, stringFlag(t, cmd.Flags, "checkpoint-db").Value)
	})
}

func TestIngestCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "vibesearch",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "collection", Value: "songs"},
			&cli.StringFlag{Name: "embedding-host", Value: "http://localhost:11434/v1"},
			&cli.StringFlag{Name: "embedding-model", Value: "all-minilm"},
			&cli.StringFlag{Name: "qdrant-host", Value: "localhost"},
			&cli.IntFlag{Name: "qdrant-port", Value: 6334},
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "batch-size", Value: 100},
				},
			},
		},
	}

	t.Run("missing corpus path fails", func(t *testing.T) {
		err := app.Run([]string{"vibesearch", "ingest"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corpus path")
	})

	t.Run("zero batch-size fails", func(t *testing.T) {
		err := app.Run([]string{"vibesearch", "ingest", "--batch-size", "0", "corpus.csv"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})
}

func TestSearchCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "vibesearch",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10},
					&cli.StringFlag{Name: "artist"},
				},
			},
		},
	}

	t.Run("missing query fails", func(t *testing.T) {
		err := app.Run([]string{"vibesearch", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query")
	})

	t.Run("artist flag satisfies the query requirement", func(t *testing.T) {
		err := app.Run([]string{"vibesearch", "search", "--artist", "ABBA"})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "query", "artist lookup needs no query argument")
	})
}

func TestPlaylistCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "vibesearch",
		Commands: []*cli.Command{
			{
				Name:   "playlist",
				Action: playlistCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10},
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "access-token"},
				},
			},
		},
	}

	t.Run("missing query fails", func(t *testing.T) {
		err := app.Run([]string{"vibesearch", "playlist"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query")
	})

	t.Run("missing access token fails", func(t *testing.T) {
		err := app.Run([]string{"vibesearch", "playlist", "mellow", "evening"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access-token")
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
