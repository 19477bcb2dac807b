package jobboard

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-jobboard/middleware/jwtware"
)

// RegisterRoutes mounts the board API on app
func RegisterRoutes[T any](app router.Router[T], controller *BoardController) {
	r := controller.Routes

	app.Get(r.Health, controller.Health).SetName("health.get")

	app.Post(r.Session, controller.IssueSession).SetName("session.post")
	app.Post(r.Logout, controller.ClearSession).SetName("session.delete")

	app.Get(r.Jobs, controller.ListJobs).SetName("jobs.index")
	app.Post(r.Jobs, controller.CreateJob).SetName("jobs.create")
	app.Get(r.Jobs+"/:id", controller.GetJob).SetName("jobs.show")

	// session gate first, ownership second, then the handler
	app.Get(r.Applications, controller.ProtectedApplicantHistory()).
		SetName("applications.index")
	app.Post(r.Applications, controller.Apply).SetName("applications.create")
	app.Get(r.Applications+"/jobs/:id", controller.ListApplicationsByJob).
		SetName("applications.by_job")
	app.Patch(r.Applications+"/:id", controller.UpdateApplicationStatus).
		SetName("applications.update_status")
	app.Delete(r.Applications+"/:id", controller.DeleteApplication).
		SetName("applications.delete")
}

type BoardControllerRoutes struct {
	Health       string
	Session      string
	Logout       string
	Jobs         string
	Applications string
}

type BoardController struct {
	Debug        bool
	Logger       Logger
	Board        *Board
	Tokens       *TokenService
	Cookies      *SessionCookies
	Metrics      Metrics
	ContextKey   string
	Routes       *BoardControllerRoutes
	ErrorHandler router.ErrorHandler
	Listeners    []ValidationListener
}

type BoardControllerOption func(*BoardController) *BoardController

func WithControllerLogger(logger Logger) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerMetrics(m Metrics) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		if m != nil {
			c.Metrics = m
		}
		return c
	}
}

// WithSessionListeners runs extra listeners after the gate verifies a token
func WithSessionListeners(listeners ...ValidationListener) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		c.Listeners = append(c.Listeners, listeners...)
		return c
	}
}

func WithControllerDebug(debug bool) BoardControllerOption {
	return func(c *BoardController) *BoardController {
		c.Debug = debug
		return c
	}
}

// NewBoardController wires the HTTP surface. Board, tokens and cookies are
// required.
func NewBoardController(board *Board, tokens *TokenService, cookies *SessionCookies, cfg Config, opts ...BoardControllerOption) *BoardController {
	c := &BoardController{
		Logger:     defLogger{},
		Board:      board,
		Tokens:     tokens,
		Cookies:    cookies,
		Metrics:    NopMetrics{},
		ContextKey: cfg.GetContextKey(),
		Routes: &BoardControllerRoutes{
			Health:       "/",
			Session:      "/jwt",
			Logout:       "/logout",
			Jobs:         "/jobs",
			Applications: "/job-application",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.ContextKey == "" {
		c.ContextKey = "user"
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.defaultErrHandler
	}

	if c.Board == nil {
		panic("Missing Board in board controller...")
	}

	if c.Tokens == nil || c.Cookies == nil {
		panic("Missing session services in board controller...")
	}

	return c
}

// SessionGate returns the middleware that requires a valid session cookie
func (c *BoardController) SessionGate() router.MiddlewareFunc {
	cfg := jwtware.Config{
		ContextKey:      c.ContextKey,
		TokenLookup:     "cookie:" + c.Cookies.Name(),
		TokenValidator:  c.Tokens.Validator(),
		ContextEnricher: ContextEnricherAdapter,
		ErrorHandler:    c.sessionErrHandler,
	}
	RegisterValidationListeners(&cfg, SessionMetricsListener(c.Metrics))
	RegisterValidationListeners(&cfg, c.Listeners...)
	return jwtware.New(cfg)
}

// ProtectedApplicantHistory composes the session gate, the ownership guard
// on the email query parameter and the listing handler.
func (c *BoardController) ProtectedApplicantHistory() router.HandlerFunc {
	guard := OwnershipGuard("email", c.ContextKey, c.Logger)
	return c.SessionGate()(guard(c.ListApplicationsByApplicant))
}

func (c *BoardController) Health(ctx router.Context) error {
	return ctx.SendString("Job Server Is Running")
}

// SessionRequest is the body of POST /jwt
type SessionRequest struct {
	Email string `json:"email" form:"email"`
}

// Validate will run validation rules
func (r SessionRequest) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.EmailFormat),
		)
	}, "invalid session request"); err != nil {
		return err
	}
	return nil
}

// IssueSession mints a token for the posted email and sets the cookie
func (c *BoardController) IssueSession(ctx router.Context) error {
	payload := new(SessionRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, badBody(err))
	}

	if err := payload.Validate(); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	token, err := c.Tokens.Issue(payload.Email)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	c.Cookies.Set(ctx, token)
	c.Metrics.Increment("auth.issued")

	return ctx.JSON(router.StatusOK, map[string]any{"success": true})
}

// ClearSession expires the session cookie
func (c *BoardController) ClearSession(ctx router.Context) error {
	c.Cookies.Delete(ctx)
	return ctx.JSON(router.StatusOK, map[string]any{"success": true})
}

func (c *BoardController) ListJobs(ctx router.Context) error {
	records, err := c.Board.ListJobs(ctx.Context(), ctx.Query("email", ""))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

// GetJob answers null for ids that match nothing
func (c *BoardController) GetJob(ctx router.Context) error {
	job, err := c.Board.GetJob(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	if job == nil {
		return ctx.JSON(router.StatusOK, nil)
	}
	return ctx.JSON(router.StatusOK, job)
}

func (c *BoardController) CreateJob(ctx router.Context) error {
	job := new(Job)
	if err := ctx.Bind(job); err != nil {
		return c.ErrorHandler(ctx, badBody(err))
	}

	if c.Debug {
		c.Logger.Debug("create job", "payload", print.MaybePrettyJSON(job))
	}

	res, err := c.Board.CreateJob(ctx.Context(), job)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, res)
}

func (c *BoardController) Apply(ctx router.Context) error {
	app := new(Application)
	if err := ctx.Bind(app); err != nil {
		return c.ErrorHandler(ctx, badBody(err))
	}

	res, err := c.Board.Apply(ctx.Context(), app)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, res)
}

// ListApplicationsByApplicant re-checks ownership so the handler stays safe
// even when mounted without the guard.
func (c *BoardController) ListApplicationsByApplicant(ctx router.Context) error {
	verified, _ := requestIdentity(ctx, c.ContextKey)
	requested := ctx.Query("email", "")

	if err := Authorize(verified, requested); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	records, err := c.Board.ListApplicationsByApplicant(ctx.Context(), requested)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (c *BoardController) ListApplicationsByJob(ctx router.Context) error {
	records, err := c.Board.ListApplicationsByJob(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

// StatusRequest is the body of PATCH /job-application/:id
type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

func (c *BoardController) UpdateApplicationStatus(ctx router.Context) error {
	payload := new(StatusRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, badBody(err))
	}

	res, err := c.Board.UpdateApplicationStatus(ctx.Context(), ctx.Param("id"), payload.Status)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, res)
}

func (c *BoardController) DeleteApplication(ctx router.Context) error {
	res, err := c.Board.DeleteApplication(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(router.StatusOK, res)
}

func (c *BoardController) sessionErrHandler(ctx router.Context, err error) error {
	c.Metrics.Increment("auth.rejected")
	c.Logger.Debug("session rejected", "error", err)
	return jwtware.DefaultErrorHandler(ctx, err)
}

func (c *BoardController) defaultErrHandler(ctx router.Context, err error) error {
	if IsUnauthenticated(err) || IsForbidden(err) {
		c.Metrics.Increment("auth.error")
	}
	return WriteError(ctx, c.Logger, err)
}

func badBody(err error) error {
	return fail(ErrMalformedInput, map[string]any{"reason": err.Error()})
}
