package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(GraphQueryErrors.WithLabelValues("test_op"))

	ObserveQuery("test_op", time.Now(), nil)
	assert.Equal(t, before, testutil.ToFloat64(GraphQueryErrors.WithLabelValues("test_op")))

	ObserveQuery("test_op", time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(GraphQueryErrors.WithLabelValues("test_op")))
}
