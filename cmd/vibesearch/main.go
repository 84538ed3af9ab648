// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/vibesearch"
	"github.com/poiesic/vibesearch/ai"
	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index/qdrant"
	"github.com/poiesic/vibesearch/ingest"
	"github.com/poiesic/vibesearch/playlist/youtube"
	"github.com/poiesic/vibesearch/search"
)

func main() {
	app := &cli.App{
		Name:  "vibesearch",
		Usage: "Semantic song search over a lyrics corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "qdrant-host",
				Usage: "Qdrant host",
				Value: "localhost",
			},
			&cli.IntFlag{
				Name:  "qdrant-port",
				Usage: "Qdrant gRPC port",
				Value: 6334,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "all-minilm",
			},
			&cli.StringFlag{
				Name:    "collection",
				Aliases: []string{"c"},
				Usage:   "Collection name",
				Value:   search.DefaultCollection,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a song corpus CSV into the index",
				ArgsUsage: "<corpus.csv>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to ingest (0 = all)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches processed in parallel (0 = NumCPU/2)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "checkpoint-db",
						Usage: "Path to checkpoint database directory for resumable runs",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search songs by vibe, or list an artist's songs",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "List songs by this artist instead of searching by query",
					},
				},
			},
			{
				Name:      "playlist",
				Usage:     "Search songs and materialize the results as a YouTube playlist",
				ArgsUsage: "<query>",
				Action:    playlistCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of songs",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Playlist title (defaults to the query)",
					},
					&cli.StringFlag{
						Name:    "access-token",
						Usage:   "YouTube OAuth2 access token with the youtube scope",
						EnvVars: []string{"YOUTUBE_ACCESS_TOKEN"},
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show collection statistics",
				Action: statsCommand,
			},
			{
				Name:   "drop",
				Usage:  "Delete the collection and its schema metadata",
				Action: dropCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newLibrary wires the global flags into a Library.
func newLibrary(c *cli.Context, opts ...vibesearch.LibraryOption) (*vibesearch.Library, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	aiConfig.Normalize()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	qdrantConfig := &qdrant.Config{
		Host: c.String("qdrant-host"),
		Port: c.Int("qdrant-port"),
	}

	opts = append([]vibesearch.LibraryOption{
		vibesearch.WithAIConfig(aiConfig),
		vibesearch.WithQdrantConfig(qdrantConfig),
	}, opts...)
	return vibesearch.NewLibrary(opts...)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	corpusPath := c.Args().First()
	if corpusPath == "" {
		return fmt.Errorf("corpus path is required")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	var libOpts []vibesearch.LibraryOption
	if path := c.String("checkpoint-db"); path != "" {
		libOpts = append(libOpts, vibesearch.WithCheckpointPath(path))
	}
	library, err := newLibrary(c, libOpts...)
	if err != nil {
		return err
	}
	defer library.Close()

	source, err := ingest.OpenCSV(corpusPath)
	if err != nil {
		return err
	}
	defer source.Close()

	pipelineOpts := []ingest.Option{
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingest.WithProgressWriter(os.Stderr),
	}
	if workers := c.Int("workers"); workers > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithPoolSize(workers))
	}

	pipeline, err := library.NewIngestPipeline(pipelineOpts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Corpus: %s\n", corpusPath)
	fmt.Fprintf(os.Stderr, "Collection: %s\n", c.String("collection"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.Run(ctx, source, c.String("collection"), &ingest.RunOptions{
		Limit: c.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d records (%d resumed, %d skipped) in %s\n",
		report.Ingested, report.Resumed, report.Skipped, report.Elapsed.Round(time.Millisecond))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	artist := c.String("artist")
	query := strings.Join(c.Args().Slice(), " ")
	if artist == "" && strings.TrimSpace(query) == "" {
		return fmt.Errorf("query or --artist is required")
	}

	library, err := newLibrary(c)
	if err != nil {
		return err
	}
	defer library.Close()

	searcher, err := library.NewSearcher(search.WithCollection(c.String("collection")))
	if err != nil {
		return err
	}

	var results []*core.SearchResult
	if artist != "" {
		results, err = searcher.ByArtist(ctx, artist, c.Int("limit"))
	} else {
		results, err = searcher.Search(ctx, query, c.Int("limit"))
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%2d.", i+1)
		if artist == "" {
			fmt.Printf(" [%.4f]", result.Score)
		}
		fmt.Printf(" %s - %s", result.Payload.Artist, result.Payload.Song)
		if result.Payload.Link != "" {
			fmt.Printf("  (%s)", result.Payload.Link)
		}
		fmt.Println()
	}
	return nil
}

func playlistCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}
	accessToken := c.String("access-token")
	if accessToken == "" {
		return fmt.Errorf("access-token is required")
	}
	title := c.String("title")
	if title == "" {
		title = query
	}

	library, err := newLibrary(c)
	if err != nil {
		return err
	}
	defer library.Close()

	searcher, err := library.NewSearcher(search.WithCollection(c.String("collection")))
	if err != nil {
		return err
	}

	results, err := searcher.Search(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no matches for %q", query)
	}

	songs := make([]core.SongRef, len(results))
	for i, result := range results {
		songs[i] = result.Ref()
	}

	creator, err := youtube.NewCreator(ctx, youtube.StaticTokenSource(accessToken))
	if err != nil {
		return err
	}

	url, err := creator.CreatePlaylist(ctx, title, songs)
	if err != nil {
		return fmt.Errorf("playlist creation failed: %w", err)
	}

	fmt.Println(url)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	library, err := newLibrary(c)
	if err != nil {
		return err
	}
	defer library.Close()

	info, err := library.Index().Describe(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("describe collection: %w", err)
	}

	fmt.Printf("Collection:      %s\n", info.Name)
	fmt.Printf("Songs:           %d\n", info.Points)
	fmt.Printf("Dimensions:      %d\n", info.Dimensions)
	fmt.Printf("Metric:          %s\n", info.Metric)
	fmt.Printf("Embedding model: %s\n", info.EmbeddingModel)
	return nil
}

func dropCommand(c *cli.Context) error {
	ctx := context.Background()
	collection := c.String("collection")

	if !c.Bool("yes") {
		fmt.Printf("Delete collection %q and all its entries? [y/N] ", collection)
		var answer string
		fmt.Scanln(&answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	library, err := newLibrary(c)
	if err != nil {
		return err
	}
	defer library.Close()

	if err := library.Index().DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	fmt.Printf("Collection %q deleted.\n", collection)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
