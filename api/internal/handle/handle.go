package handle

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mathcalc/api/internal/calc"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Analyzer is the part of calc.Analyzer the handlers rely on.
type Analyzer interface {
	Analyze(ctx context.Context, img calc.Image, vars calc.Variables) ([]calc.ResultRecord, error)
}

// Pinger checks that the remote model answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Version string
	// PingTimeout bounds the model round trip made by /health.
	PingTimeout time.Duration
	// MaxImagePixels caps width*height of uploads; 0 uses the calc default.
	MaxImagePixels int
}

type Handle struct {
	analyzer Analyzer
	model    Pinger
	log      *zap.Logger
	opts     Options
}

func New(analyzer Analyzer, model Pinger, log *zap.Logger, opts Options) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		analyzer: analyzer,
		model:    model,
		log:      log,
		opts:     opts,
	}
}

// Envelope is the body of every /calculate response.
type Envelope struct {
	Message string              `json:"message"`
	Data    []calc.ResultRecord `json:"data"`
	Status  string              `json:"status"`
}

func writeError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Envelope{
		Message: msg,
		Data:    []calc.ResultRecord{},
		Status:  statusError,
	})
}

// Register mounts the handlers on r.
func (h *Handle) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.POST("/calculate", h.Calculate)
	r.POST("/calculate/", h.Calculate)
}
