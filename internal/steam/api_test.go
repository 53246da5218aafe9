package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newAPIFixture(t *testing.T, handler http.HandlerFunc) Source {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Options{
		UserID:       "testuser",
		Credentials:  Credentials{APIKey: "test-key"},
		CommunityURL: server.URL,
		APIURL:       server.URL,
		HTTPClient:   server.Client(),
	})
}

func TestNewPicksStrategy(t *testing.T) {
	src := New(Options{UserID: "u", Credentials: Credentials{APIKey: "k"}})
	_, ok := src.(*apiSource)
	require.True(t, ok)

	src = New(Options{UserID: "u"})
	_, ok = src.(*webSource)
	require.True(t, ok)
}

func TestAPIValidateProfile(t *testing.T) {
	src := newAPIFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ISteamUser/ResolveVanityURL/v1/":
			require.Equal(t, "test-key", r.URL.Query().Get("key"))
			require.Equal(t, "testuser", r.URL.Query().Get("vanityurl"))
			fmt.Fprint(w, `{"response":{"success":1,"steamid":"76561198000000000"}}`)
		case "/ISteamUser/GetPlayerSummaries/v2/":
			require.Equal(t, "76561198000000000", r.URL.Query().Get("steamids"))
			fmt.Fprint(w, `{"response":{"players":[{"steamid":"76561198000000000","personaname":"API Player","avatarfull":"https://avatars.example/api.jpg","profileurl":"https://steamcommunity.com/id/testuser/"}]}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	profile, err := src.ValidateProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "API Player", profile.Name)
	require.Equal(t, "https://avatars.example/api.jpg", profile.AvatarURL)
}

func TestAPIValidateProfileFallsBackToScrape(t *testing.T) {
	src := newAPIFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ISteamUser/ResolveVanityURL/v1/":
			w.WriteHeader(http.StatusForbidden)
		case "/id/testuser":
			fmt.Fprint(w, profilePage)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	profile, err := src.ValidateProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Test Player", profile.Name)
}

func TestAPIListScreenshots(t *testing.T) {
	src := newAPIFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ISteamUser/ResolveVanityURL/v1/":
			fmt.Fprint(w, `{"response":{"success":1,"steamid":"76561198000000000"}}`)
		case "/IPublishedFileService/GetUserFiles/v1/":
			require.Equal(t, "570", r.URL.Query().Get("appid"))
			require.Equal(t, "100", r.URL.Query().Get("numperpage"))
			fmt.Fprint(w, `{"response":{"total":2,"publishedfiledetails":[
				{"publishedfileid":"2001","file_url":"https://images.example/ugc/2001/full/","preview_url":"https://images.example/ugc/2001/thumb/","file_description":"First blood","time_created":1721078580,"file_size":"2621440","image_width":1920,"image_height":1080},
				{"publishedfileid":"2002","file_url":"","preview_url":"https://images.example/ugc/2002/thumb/","time_created":0,"file_size":"","image_width":0,"image_height":0}
			]}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	shots, err := src.ListScreenshots(context.Background(), 570)
	require.NoError(t, err)
	require.Len(t, shots, 2)

	first := shots[0]
	require.Equal(t, "2001", first.ID)
	require.Equal(t, "https://images.example/ugc/2001/full/", first.FullImageURL)
	require.Equal(t, "First blood", first.Caption)
	require.EqualValues(t, 2621440, first.FileSize)
	require.Equal(t, 1920, first.Width)
	require.NotNil(t, first.TakenAt)
	require.EqualValues(t, 1721078580, first.TakenAt.Unix())

	// Missing file_url falls back to the preview so downloads still work.
	require.Equal(t, "https://images.example/ugc/2002/thumb/", shots[1].FullImageURL)
	require.Nil(t, shots[1].TakenAt)
}

func TestAPIListScreenshotsPaginates(t *testing.T) {
	pages := 0
	src := newAPIFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ISteamUser/ResolveVanityURL/v1/":
			fmt.Fprint(w, `{"response":{"success":1,"steamid":"76561198000000000"}}`)
		case "/IPublishedFileService/GetUserFiles/v1/":
			pages++
			if r.URL.Query().Get("page") == "1" {
				w.Write([]byte(`{"response":{"total":101,"publishedfiledetails":[`))
				for i := 0; i < apiPageSize; i++ {
					if i > 0 {
						w.Write([]byte(","))
					}
					fmt.Fprintf(w, `{"publishedfileid":"%d","file_url":"https://images.example/%d"}`, i, i)
				}
				w.Write([]byte(`]}}`))
				return
			}
			fmt.Fprint(w, `{"response":{"total":101,"publishedfiledetails":[{"publishedfileid":"last","file_url":"https://images.example/last"}]}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	shots, err := src.ListScreenshots(context.Background(), 570)
	require.NoError(t, err)
	require.Len(t, shots, 101)
	require.Equal(t, 2, pages)
}

func TestAPIResolveDetailSkipsResolvedShots(t *testing.T) {
	src := newAPIFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})
	shot := Screenshot{ID: "2001", FullImageURL: "https://images.example/full"}
	require.Equal(t, shot, src.ResolveDetail(context.Background(), shot))
}
