package jobboard_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-jobboard"
)

type controllerFixture struct {
	controller *jobboard.BoardController
	board      *jobboard.Board
	tokens     *jobboard.TokenService
	metrics    *countingMetrics
}

func newControllerFixture(t *testing.T, env string) *controllerFixture {
	t.Helper()

	cfg := testSettings(env)
	metrics := newCountingMetrics()

	tokens, err := jobboard.NewTokenService(cfg, jobboard.WithTokenLogger(nopLogger{}))
	require.NoError(t, err)

	board, _ := newTestBoard(t, jobboard.WithBoardMetrics(metrics))

	controller := jobboard.NewBoardController(board, tokens, jobboard.NewSessionCookies(cfg), cfg,
		jobboard.WithControllerLogger(nopLogger{}),
		jobboard.WithControllerMetrics(metrics),
	)

	return &controllerFixture{
		controller: controller,
		board:      board,
		tokens:     tokens,
		metrics:    metrics,
	}
}

func TestNewBoardController_RequiresServices(t *testing.T) {
	cfg := testSettings(jobboard.EnvDevelopment)
	assert.Panics(t, func() {
		jobboard.NewBoardController(nil, nil, nil, cfg)
	})
}

func TestBoardController_Health(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	ctx := router.NewMockContext()
	ctx.On("SendString", "Job Server Is Running").Return(nil)

	require.NoError(t, f.controller.Health(ctx))
	ctx.AssertExpectations(t)
}

func TestBoardController_IssueSession(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvProduction)

	var issued *router.Cookie
	var body map[string]any

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*jobboard.SessionRequest).Email = "alice@example.com"
	}).Return(nil)
	ctx.On("Cookie", mock.Anything).Run(func(args mock.Arguments) {
		issued = args.Get(0).(*router.Cookie)
	}).Return()
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]any)
	}).Return(nil)

	require.NoError(t, f.controller.IssueSession(ctx))
	ctx.AssertExpectations(t)

	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "token", "the token only travels in the cookie")

	require.NotNil(t, issued)
	assert.Equal(t, "token", issued.Name)
	assert.True(t, issued.HTTPOnly)
	assert.True(t, issued.Secure)
	assert.Equal(t, "Strict", issued.SameSite)

	session, err := f.tokens.Verify(issued.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", session.Identity())
	assert.Equal(t, 1, f.metrics.Count("auth.issued"))
}

func TestBoardController_IssueSessionRejectsBadEmail(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	for _, email := range []string{"", "not-an-email"} {
		t.Run(email, func(t *testing.T) {
			ctx := router.NewMockContext()
			ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
				args.Get(0).(*jobboard.SessionRequest).Email = email
			}).Return(nil)
			ctx.On("JSON", router.StatusBadRequest, mock.Anything).Return(nil)

			require.NoError(t, f.controller.IssueSession(ctx))
			ctx.AssertExpectations(t)
			ctx.AssertNotCalled(t, "Cookie", mock.Anything)
		})
	}
}

func TestBoardController_ClearSession(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	ctx := router.NewMockContext()
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "token" && c.Value == "" && c.HTTPOnly && c.SameSite == "Lax"
	})).Return()
	ctx.On("JSON", router.StatusOK, map[string]any{"success": true}).Return(nil)

	require.NoError(t, f.controller.ClearSession(ctx))
	ctx.AssertExpectations(t)
}

func TestBoardController_GetJob(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	res, err := f.board.CreateJob(context.Background(), &jobboard.Job{HREmail: "hr@acme.io", Title: "Backend Engineer"})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		var payload any
		ctx := router.NewMockContext()
		ctx.ParamsM["id"] = res.InsertedID
		ctx.On("Context").Return(context.Background())
		ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			payload = args.Get(1)
		}).Return(nil)

		require.NoError(t, f.controller.GetJob(ctx))
		job, ok := payload.(*jobboard.Job)
		require.True(t, ok)
		assert.Equal(t, "Backend Engineer", job.Title)
	})

	t.Run("absent", func(t *testing.T) {
		payload := any("unset")
		ctx := router.NewMockContext()
		ctx.ParamsM["id"] = "missing"
		ctx.On("Context").Return(context.Background())
		ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			payload = args.Get(1)
		}).Return(nil)

		require.NoError(t, f.controller.GetJob(ctx))
		assert.Nil(t, payload)
	})
}

func TestBoardController_ListApplicationsByApplicant(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	_, err := f.board.Apply(context.Background(), &jobboard.Application{ApplicantEmail: "a@x.com", JobID: "job-1"})
	require.NoError(t, err)

	t.Run("own history", func(t *testing.T) {
		var payload []*jobboard.EnrichedApplication
		ctx := router.NewMockContext()
		ctx.QueriesM["email"] = "a@x.com"
		ctx.On("Context").Return(jobboard.WithIdentity(context.Background(), "a@x.com"))
		ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			payload = args.Get(1).([]*jobboard.EnrichedApplication)
		}).Return(nil)

		require.NoError(t, f.controller.ListApplicationsByApplicant(ctx))
		require.Len(t, payload, 1)
		assert.Equal(t, "a@x.com", payload[0].ApplicantEmail)
	})

	t.Run("someone else", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.QueriesM["email"] = "a@x.com"
		ctx.On("Context").Return(jobboard.WithIdentity(context.Background(), "b@x.com"))
		ctx.On("JSON", router.StatusForbidden, map[string]any{"message": "forbidden"}).Return(nil)

		require.NoError(t, f.controller.ListApplicationsByApplicant(ctx))
		ctx.AssertExpectations(t)
	})

	assert.Equal(t, 1, f.metrics.Count("auth.error"))
}

func TestBoardController_ProtectedApplicantHistoryWithoutSession(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	ctx := router.NewMockContext()
	ctx.QueriesM["email"] = "a@x.com"
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Return(nil)

	require.NoError(t, f.controller.ProtectedApplicantHistory()(ctx))
	ctx.AssertExpectations(t)
	assert.Equal(t, 1, f.metrics.Count("auth.rejected"))
}

func TestBoardController_UpdateAndDeleteApplication(t *testing.T) {
	f := newControllerFixture(t, jobboard.EnvDevelopment)

	created, err := f.board.Apply(context.Background(), &jobboard.Application{ApplicantEmail: "a@x.com", JobID: "job-1"})
	require.NoError(t, err)

	update := router.NewMockContext()
	update.ParamsM["id"] = created.InsertedID
	update.On("Context").Return(context.Background())
	update.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*jobboard.StatusRequest).Status = "interview"
	}).Return(nil)
	update.On("JSON", router.StatusOK, &jobboard.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}).Return(nil)

	require.NoError(t, f.controller.UpdateApplicationStatus(update))
	update.AssertExpectations(t)

	malformed := router.NewMockContext()
	malformed.ParamsM["id"] = "bogus"
	malformed.On("Context").Return(context.Background())
	malformed.On("JSON", router.StatusBadRequest, mock.Anything).Return(nil)

	require.NoError(t, f.controller.DeleteApplication(malformed))
	malformed.AssertExpectations(t)

	remove := router.NewMockContext()
	remove.ParamsM["id"] = created.InsertedID
	remove.On("Context").Return(context.Background())
	remove.On("JSON", router.StatusOK, &jobboard.DeleteResult{Acknowledged: true, DeletedCount: 1}).Return(nil)

	require.NoError(t, f.controller.DeleteApplication(remove))
	remove.AssertExpectations(t)
}
