package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/playlist"
)

const (
	privacyStatus = "unlisted"
	videoKind     = "youtube#video"
	watchBaseURL  = "https://www.youtube.com/playlist?list="
)

// api is the slice of the YouTube Data API the creator needs. It exists
// so tests can run without credentials.
type api interface {
	searchVideo(ctx context.Context, query string) (videoID string, err error)
	insertPlaylist(ctx context.Context, title string) (playlistID string, err error)
	insertItem(ctx context.Context, playlistID, videoID string) error
}

// Creator materializes playlists on YouTube.
type Creator struct {
	api    api
	logger *slog.Logger
}

var _ playlist.Creator = (*Creator)(nil)

// NewCreator builds a Creator from an OAuth2 token source. The token
// must carry the youtube scope.
//
// Returns playlist.Creator interface to enforce abstraction.
func NewCreator(ctx context.Context, ts oauth2.TokenSource) (playlist.Creator, error) {
	service, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Creator{
		api:    &serviceAPI{service: service},
		logger: slog.Default().With("component", "youtube-playlist"),
	}, nil
}

// CreatePlaylist creates an unlisted playlist, resolves each song via
// YouTube search, and appends the best match in order. Songs that fail
// to resolve are logged and skipped.
func (c *Creator) CreatePlaylist(ctx context.Context, title string, songs []core.SongRef) (string, error) {
	if title == "" {
		return "", playlist.ErrTitleRequired
	}
	if len(songs) == 0 {
		return "", playlist.ErrNoSongs
	}

	playlistID, err := c.api.insertPlaylist(ctx, title)
	if err != nil {
		return "", err
	}

	added := 0
	for _, song := range songs {
		query := song.Artist + " " + song.Song
		videoID, err := c.api.searchVideo(ctx, query)
		if err != nil || videoID == "" {
			c.logger.Warn("could not resolve song, skipping", "artist", song.Artist, "song", song.Song, "err", err)
			continue
		}
		if err := c.api.insertItem(ctx, playlistID, videoID); err != nil {
			c.logger.Warn("could not add song to playlist, skipping", "artist", song.Artist, "song", song.Song, "err", err)
			continue
		}
		added++
	}

	c.logger.Info("playlist created", "title", title, "added", added, "requested", len(songs))
	return watchBaseURL + playlistID, nil
}

// serviceAPI implements api against the real YouTube Data API.
type serviceAPI struct {
	service *youtube.Service
}

var _ api = (*serviceAPI)(nil)

func (s *serviceAPI) searchVideo(ctx context.Context, query string) (string, error) {
	response, err := s.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(response.Items) == 0 {
		return "", nil
	}
	return response.Items[0].Id.VideoId, nil
}

func (s *serviceAPI) insertPlaylist(ctx context.Context, title string) (string, error) {
	created, err := s.service.Playlists.Insert([]string{"snippet", "status"}, &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: title},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: privacyStatus},
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

func (s *serviceAPI) insertItem(ctx context.Context, playlistID, videoID string) error {
	_, err := s.service.PlaylistItems.Insert([]string{"snippet"}, &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{Kind: videoKind, VideoId: videoID},
		},
	}).Context(ctx).Do()
	return err
}
