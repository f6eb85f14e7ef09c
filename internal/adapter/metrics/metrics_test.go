package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social-wallet-api/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserveLedgerCall_Outcomes(t *testing.T) {
	m := New()

	m.ObserveLedgerCall("hedera", "transfer", nil, 2*time.Second)
	m.ObserveLedgerCall("hedera", "transfer", apperror.ErrInsufficientFunds(), time.Second)
	m.ObserveLedgerCall("stellar", "get_balance", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerCalls.WithLabelValues("hedera", "transfer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerCalls.WithLabelValues("hedera", "transfer", apperror.CodeInsufficientFunds)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerCalls.WithLabelValues("stellar", "get_balance", "error")))
}

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/v1/wallets/:network", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, network := range []string{"hedera", "stellar"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+network, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/wallets/:network", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObserveLedgerCall("stellar", "transfer", nil, time.Second)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `social_wallet_ledger_calls_total{network="stellar",operation="transfer",outcome="ok"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
