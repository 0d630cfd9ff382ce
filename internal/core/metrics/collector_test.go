package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// TestCollector_Collect 测试采集输出
func TestCollector_Collect(t *testing.T) {
	c := NewCounters(nil)
	c.Posted(types.ChannelTransient)
	c.Posted(types.ChannelSticky)
	c.Posted(types.ChannelSticky)
	c.Delivered()
	c.Dropped(pkgif.DropOverflow)
	c.SubscriptionOpened()

	collector := NewCollector("flowbus", c)

	expected := `
# HELP flowbus_posted_total Envelopes dispatched, by channel.
# TYPE flowbus_posted_total counter
flowbus_posted_total{channel="sticky"} 2
flowbus_posted_total{channel="transient"} 1
# HELP flowbus_dropped_total Envelopes not delivered, by reason.
# TYPE flowbus_dropped_total counter
flowbus_dropped_total{reason="inactive"} 0
flowbus_dropped_total{reason="overflow"} 1
flowbus_dropped_total{reason="unobserved"} 0
# HELP flowbus_active_subscriptions Subscriptions not yet cancelled.
# TYPE flowbus_active_subscriptions gauge
flowbus_active_subscriptions 1
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"flowbus_posted_total", "flowbus_dropped_total", "flowbus_active_subscriptions")
	assert.NoError(t, err)

	assert.Equal(t, 10, testutil.CollectAndCount(collector))
}

// TestCollector_Register 测试注册到 Registry
func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := NewCounters(nil)

	require.NoError(t, reg.Register(NewCollector("custom", c)))
	c.Delivered()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "custom_delivered_total")
	assert.Contains(t, names, "custom_post_rate")
}
