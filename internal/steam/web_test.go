package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const profilePage = `<html><body>
<div class="profile_header">
	<span class="actual_persona_name">Test Player</span>
	<div class="playerAvatarAutoSizeInner"><img src="https://avatars.example/full.jpg"></div>
</div>
</body></html>`

const missingProfilePage = `<html><body>
<div class="error_ctn"><h3>The specified profile could not be found.</h3></div>
</body></html>`

const screenshotsPage = `<html><body>
<div class="screenshot_filter_app" data-appid="570">
	<a href="?appid=570"><span class="screenshot_filter_app_name">Dota 2</span></a>
	<span class="screenshot_filter_app_count">12</span>
</div>
<div class="screenshot_filter_app" data-appid="440">
	<a href="?appid=440"><span class="screenshot_filter_app_name">Team Fortress 2</span></a>
	<span class="screenshot_filter_app_count">3</span>
</div>
</body></html>`

const gridPageOne = `<html><body>
<div class="apphub_Card">
	<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=1001">
		<img src="https://images.example/ugc/1001/thumb/?imw=512"></a>
</div>
<div class="apphub_Card">
	<a href="https://steamcommunity.com/sharedfiles/filedetails/?id=1002">
		<img src="https://images.example/ugc/1002/thumb/?imw=512"></a>
</div>
</body></html>`

const emptyGridPage = `<html><body><div class="noItems"></div></body></html>`

const detailPage = `<html><body>
<div class="actualmediactn"><a href="#"><img src="https://images.example/ugc/1001/full/?size=big"></a></div>
<div class="screenshotDescription">Roshan falls</div>
<div class="detailsStatsContainerRight">
	<div class="detailsStatRight">2.500 MB</div>
	<div class="detailsStatRight">Jul 15, 2024 @ 9:23pm</div>
</div>
</body></html>`

func newWebFixture(t *testing.T, handler http.HandlerFunc) *webSource {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newWebSource(Options{
		UserID:       "testuser",
		CommunityURL: server.URL,
		HTTPClient:   server.Client(),
	})
}

func TestValidateProfile(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/id/testuser", r.URL.Path)
		fmt.Fprint(w, profilePage)
	})
	profile, err := src.ValidateProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Test Player", profile.Name)
	require.Equal(t, "https://avatars.example/full.jpg", profile.AvatarURL)
	require.False(t, profile.NumericID)
}

func TestValidateProfileNotFound(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, missingProfilePage)
	})
	_, err := src.ValidateProfile(context.Background())
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestValidateProfileNumericID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/profiles/76561198000000000", r.URL.Path)
		fmt.Fprint(w, profilePage)
	}))
	defer server.Close()
	src := newWebSource(Options{
		UserID:       "76561198000000000",
		CommunityURL: server.URL,
		HTTPClient:   server.Client(),
	})
	profile, err := src.ValidateProfile(context.Background())
	require.NoError(t, err)
	require.True(t, profile.NumericID)
}

func TestDiscoverGames(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, screenshotsPage)
	})
	games, err := src.DiscoverGames(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.EqualValues(t, 570, games[0].AppID)
	require.Equal(t, "Dota 2", games[0].Name)
	require.Equal(t, 12, games[0].ScreenshotCount)
	require.EqualValues(t, 440, games[1].AppID)
}

func TestDiscoverGamesEmpty(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, emptyGridPage)
	})
	games, err := src.DiscoverGames(context.Background(), false)
	require.NoError(t, err)
	require.Empty(t, games)
}

func TestListScreenshotsPaginates(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "570", r.URL.Query().Get("appid"))
		require.Equal(t, "14", r.URL.Query().Get("privacy"))
		if r.URL.Query().Get("p") == "1" {
			fmt.Fprint(w, gridPageOne)
			return
		}
		fmt.Fprint(w, emptyGridPage)
	})
	shots, err := src.ListScreenshots(context.Background(), 570)
	require.NoError(t, err)
	require.Len(t, shots, 2)
	require.Equal(t, "1001", shots[0].ID)
	require.Equal(t, "https://images.example/ugc/1001/thumb/", shots[0].FullImageURL)
	require.Contains(t, shots[0].DetailURL, "id=1001")
}

func TestResolveDetail(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage)
	})
	shot := src.ResolveDetail(context.Background(), Screenshot{
		ID:        "1001",
		DetailURL: "/sharedfiles/filedetails/?id=1001",
	})
	require.Equal(t, "https://images.example/ugc/1001/full/", shot.FullImageURL)
	require.Equal(t, "Roshan falls", shot.Caption)
	require.NotNil(t, shot.TakenAt)
	require.EqualValues(t, int64(2.5*1024*1024), shot.FileSize)
}

func TestResolveDetailFailureLeavesShotUntouched(t *testing.T) {
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	original := Screenshot{ID: "1001", DetailURL: "/sharedfiles/filedetails/?id=1001", ThumbnailURL: "thumb"}
	shot := src.ResolveDetail(context.Background(), original)
	require.Equal(t, original, shot)
}

func TestDownloadRejectsNonImages(t *testing.T) {
	payload := strings.Repeat("x", 2048)
	src := newWebFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/image":
			w.Header().Set("Content-Type", "image/jpeg")
			fmt.Fprint(w, "tiny-but-image")
		case "/big":
			w.Header().Set("Content-Type", "application/octet-stream")
			fmt.Fprint(w, payload)
		case "/error":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html>blocked</html>")
		}
	})
	base := src.communityURL
	require.NotNil(t, src.Download(context.Background(), base+"/image"))
	require.NotNil(t, src.Download(context.Background(), base+"/big"))
	require.Nil(t, src.Download(context.Background(), base+"/error"))
	require.Nil(t, src.Download(context.Background(), base+"/small-html"))
	require.Nil(t, src.Download(context.Background(), ""))
}
