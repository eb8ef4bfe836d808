package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWidgetOrder(t *testing.T) {
	t.Run("keeps a complete custom order", func(t *testing.T) {
		order := []string{
			"reports", "summary_cards", "reminders", "reconciliation",
			"monthly_chart", "search_filters", "transactions_table",
		}
		assert.Equal(t, order, normalizeWidgetOrder(order))
	})

	t.Run("drops unknown and duplicate ids", func(t *testing.T) {
		got := normalizeWidgetOrder([]string{"reports", "widget_from_v1", "reports", "reminders"})
		assert.Equal(t, "reports", got[0])
		assert.Equal(t, "reminders", got[1])
		assert.Len(t, got, len(dashboardWidgetIDs))
		assert.NotContains(t, got, "widget_from_v1")
	})

	t.Run("appends missing widgets in default order", func(t *testing.T) {
		got := normalizeWidgetOrder([]string{"monthly_chart"})
		assert.Equal(t, "monthly_chart", got[0])
		assert.Equal(t, dashboardWidgetIDs[:2], got[1:3])
		assert.Len(t, got, len(dashboardWidgetIDs))
	})

	t.Run("empty input yields the default layout", func(t *testing.T) {
		assert.Equal(t, dashboardWidgetIDs, normalizeWidgetOrder(nil))
	})
}
