package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mathcalc/api/internal/calc"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, img calc.Image, vars calc.Variables) ([]calc.ResultRecord, error) {
	args := m.Called(ctx, img, vars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]calc.ResultRecord), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func setupRouter(a Analyzer, p Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(a, p, zap.NewNop(), Options{Version: "test"}).Register(r)
	return r
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func postJSON(r http.Handler, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/calculate", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCalculate_Success(t *testing.T) {
	records := []calc.ResultRecord{{
		Expression: "2+3", Result: "5", Steps: []calc.Step{}, Kind: calc.KindArithmetic, LaTeX: "2+3 = 5",
	}}
	an := new(MockAnalyzer)
	an.On("Analyze", mock.Anything, mock.MatchedBy(func(img calc.Image) bool {
		return img.MIME == "image/png" && img.Width == 2
	}), calc.Variables{"x": 5.0, "y": "7", "z": 1.0}).Return(records, nil).Once()

	w := postJSON(setupRouter(an, new(MockPinger)), map[string]any{
		"image":        pngDataURL(t),
		"variables":    map[string]any{"x": 5, "y": "7"},
		"dict_of_vars": map[string]any{"x": 1, "z": 1},
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Image processed", env.Message)
	assert.Equal(t, records, env.Data)
	an.AssertExpectations(t)
}

func TestCalculate_InputErrors(t *testing.T) {
	cases := map[string]any{
		"missing image":  map[string]any{"variables": map[string]any{}},
		"empty image":    map[string]any{"image": ""},
		"no comma":       map[string]any{"image": "aGVsbG8="},
		"bad base64":     map[string]any{"image": "data:image/png;base64,!!!"},
		"not an image":   map[string]any{"image": "data:image/png;base64,aGVsbG8="},
		"malformed json": "not an object",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			an := new(MockAnalyzer)
			w := postJSON(setupRouter(an, new(MockPinger)), body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, "error", env.Status)
			assert.NotNil(t, env.Data)
			assert.Empty(t, env.Data)
			an.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCalculate_ImageTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	an := new(MockAnalyzer)
	New(an, new(MockPinger), zap.NewNop(), Options{MaxImagePixels: 3}).Register(r)

	w := postJSON(r, map[string]any{"image": pngDataURL(t)})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Message, "exceeds 3 pixels")
	an.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculate_AnalysisErrors(t *testing.T) {
	cases := map[string]struct {
		err     error
		code    int
		message string
	}{
		"unparsable": {
			&calc.AnalysisError{Cause: fmt.Errorf("%w: raw text", calc.ErrUnparsableResponse)},
			http.StatusInternalServerError, "unparsable model response",
		},
		"no records": {
			&calc.AnalysisError{Cause: calc.ErrNoValidRecords},
			http.StatusInternalServerError, "no valid records in model response",
		},
		"model down": {
			&calc.AnalysisError{Cause: fmt.Errorf("%w: dial tcp: refused", calc.ErrModelUnavailable)},
			http.StatusBadGateway, "model unavailable",
		},
		"bad variable": {
			fmt.Errorf("%w: variable \"x\" must be a string or number", calc.ErrInvalidInput),
			http.StatusBadRequest, "invalid input: variable \"x\" must be a string or number",
		},
		"unexpected": {
			errors.New("nil pointer somewhere"),
			http.StatusInternalServerError, "internal error",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			an := new(MockAnalyzer)
			an.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			w := postJSON(setupRouter(an, new(MockPinger)), map[string]any{"image": pngDataURL(t)})

			assert.Equal(t, tc.code, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tc.message, env.Message)
			assert.Empty(t, env.Data)
		})
	}
}

func TestRoot(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(new(MockAnalyzer), new(MockPinger)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server is running","status":"online","version":"test"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		p := new(MockPinger)
		p.On("Ping", mock.Anything).Return(nil).Once()
		w := httptest.NewRecorder()
		setupRouter(new(MockAnalyzer), p).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
		p.AssertExpectations(t)
	})

	t.Run("unhealthy", func(t *testing.T) {
		p := new(MockPinger)
		p.On("Ping", mock.Anything).Return(calc.ErrModelUnavailable).Once()
		w := httptest.NewRecorder()
		setupRouter(new(MockAnalyzer), p).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
	})
}
