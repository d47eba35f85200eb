// internal/stats/aggregator_test.go
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	custom_errors "devboard/internal/errors"
	"devboard/internal/model"
)

// MockGitHub is a mock of the GitHubAPI interface.
type MockGitHub struct {
	mock.Mock
}

func (m *MockGitHub) Profile(ctx context.Context, token string) (*model.Profile, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}
func (m *MockGitHub) OwnedRepos(ctx context.Context, token string, limit int, sortBy string) ([]model.Repository, error) {
	args := m.Called(ctx, token, limit, sortBy)
	repos, _ := args.Get(0).([]model.Repository)
	return repos, args.Error(1)
}
func (m *MockGitHub) CommitActivity(ctx context.Context, owner, name, token string) model.CommitActivity {
	args := m.Called(ctx, owner, name, token)
	return args.Get(0).(model.CommitActivity)
}
func (m *MockGitHub) Languages(ctx context.Context, owner, name, token string) (map[string]int, error) {
	args := m.Called(ctx, owner, name, token)
	langs, _ := args.Get(0).(map[string]int)
	return langs, args.Error(1)
}

func newTestAggregator(gh GitHubAPI) *Aggregator {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewAggregator(gh, logger, Options{Weeks: 2, MinSharePercent: 2, Concurrency: 4, RepoLimit: 8})
}

func repoNamed(name string) model.Repository {
	return model.Repository{Owner: "me", Name: name, FullName: "me/" + name}
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves input order and length", func(t *testing.T) {
		for n := 0; n <= 8; n++ {
			mockGH := new(MockGitHub)
			repos := make([]model.Repository, n)
			for i := range repos {
				repos[i] = repoNamed(fmt.Sprintf("repo-%d", i))
			}
			mockGH.On("CommitActivity", ctx, "me", mock.Anything, "tok").
				Return(model.CommitActivity{Status: model.ActivitySuccess, Weeks: weeksOf(1, 2, 3)})
			mockGH.On("Languages", ctx, "me", mock.Anything, "tok").Return(map[string]int{"Go": 10}, nil)

			got := newTestAggregator(mockGH).Aggregate(ctx, repos, "tok")

			require.Len(t, got, n)
			for i := range got {
				assert.Equal(t, repos[i].Name, got[i].Repo.Name)
			}
		}
	})

	t.Run("degrades each repository independently", func(t *testing.T) {
		mockGH := new(MockGitHub)
		mockGH.On("CommitActivity", ctx, "me", "ok", "").
			Return(model.CommitActivity{Status: model.ActivitySuccess, Weeks: weeksOf(4, 5, 6)})
		mockGH.On("Languages", ctx, "me", "ok", "").Return(map[string]int{"A": 80, "B": 19, "C": 1}, nil)
		mockGH.On("CommitActivity", ctx, "me", "private", "").
			Return(model.CommitActivity{Status: model.ActivityAnalyzing})
		mockGH.On("Languages", ctx, "me", "private", "").Return(nil, errors.New("403 Forbidden"))

		got := newTestAggregator(mockGH).Aggregate(ctx, []model.Repository{repoNamed("ok"), repoNamed("private")}, "")

		require.Len(t, got, 2)

		assert.Equal(t, model.ActivitySuccess, got[0].CommitStatus)
		assert.Equal(t, []model.WeekTotal{{Week: weeksOf(4, 5, 6)[1].Week, Total: 5}, {Week: weeksOf(4, 5, 6)[2].Week, Total: 6}}, got[0].Weeks)
		assert.Equal(t, []model.LanguageShare{{Lang: "A", Pct: 80}, {Lang: "B", Pct: 19}}, got[0].Languages)

		assert.Equal(t, model.ActivityAnalyzing, got[1].CommitStatus)
		assert.Empty(t, got[1].Weeks)
		assert.NotNil(t, got[1].Languages)
		assert.Empty(t, got[1].Languages)
		mockGH.AssertExpectations(t)
	})
}

func TestAggregator_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates owned repositories", func(t *testing.T) {
		mockGH := new(MockGitHub)
		mockGH.On("Profile", ctx, "tok").Return(&model.Profile{Login: "me"}, nil).Once()
		mockGH.On("OwnedRepos", ctx, "tok", 8, "stars").Return([]model.Repository{repoNamed("a")}, nil).Once()
		mockGH.On("CommitActivity", ctx, "me", "a", "tok").Return(model.CommitActivity{Status: model.ActivityError})
		mockGH.On("Languages", ctx, "me", "a", "tok").Return(map[string]int{}, nil)

		dash, err := newTestAggregator(mockGH).Dashboard(ctx, "tok", "stars", 0)

		require.NoError(t, err)
		assert.Equal(t, "me", dash.User.Login)
		require.Len(t, dash.Repos, 1)
		assert.Equal(t, model.ActivityError, dash.Repos[0].CommitStatus)
		mockGH.AssertExpectations(t)
	})

	t.Run("reports upstream failure when the profile is unavailable", func(t *testing.T) {
		mockGH := new(MockGitHub)
		mockGH.On("Profile", ctx, "").Return(nil, errors.New("boom")).Once()

		_, err := newTestAggregator(mockGH).Dashboard(ctx, "", "updated", 0)

		var upstreamErr *custom_errors.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, "github", upstreamErr.Service)
		mockGH.AssertNotCalled(t, "OwnedRepos")
	})

	t.Run("reports upstream failure when repositories cannot be listed", func(t *testing.T) {
		mockGH := new(MockGitHub)
		mockGH.On("Profile", ctx, "").Return(&model.Profile{Login: "me"}, nil).Once()
		mockGH.On("OwnedRepos", ctx, "", 3, "updated").Return(nil, errors.New("boom")).Once()

		_, err := newTestAggregator(mockGH).Dashboard(ctx, "", "updated", 3)

		var upstreamErr *custom_errors.UpstreamError
		assert.ErrorAs(t, err, &upstreamErr)
	})
}
