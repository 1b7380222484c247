package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cyffff/riskai/pkg/domain/model"
)

func TestValueFrom(t *testing.T) {
	t.Run("converts JSON scalar types", func(t *testing.T) {
		v, err := model.ValueFrom(42.5)
		gt.NoError(t, err)
		num, ok := v.Number()
		gt.Bool(t, ok).True()
		gt.Value(t, num).Equal(42.5)

		v, err = model.ValueFrom("JP")
		gt.NoError(t, err)
		text, ok := v.Text()
		gt.Bool(t, ok).True()
		gt.Value(t, text).Equal("JP")

		v, err = model.ValueFrom(true)
		gt.NoError(t, err)
		b, ok := v.Bool()
		gt.Bool(t, ok).True()
		gt.Bool(t, b).True()
	})

	t.Run("converts untyped JSON lists", func(t *testing.T) {
		v, err := model.ValueFrom([]any{"US", "GB"})
		gt.NoError(t, err)
		items, ok := v.List()
		gt.Bool(t, ok).True()
		gt.Number(t, len(items)).Equal(2)
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		_, err := model.ValueFrom(map[string]any{"nested": true})
		gt.Error(t, err)
	})
}

func TestValueCompare(t *testing.T) {
	t.Run("numbers compare numerically", func(t *testing.T) {
		c, ok := model.NumberValue(10).Compare(model.NumberValue(3))
		gt.Bool(t, ok).True()
		gt.Bool(t, c > 0).True()
	})

	t.Run("ISO dates compare chronologically", func(t *testing.T) {
		c, ok := model.StringValue("2024-01-02").Compare(model.StringValue("2024-01-10"))
		gt.Bool(t, ok).True()
		gt.Bool(t, c < 0).True()
	})

	t.Run("mixed kinds do not compare", func(t *testing.T) {
		_, ok := model.NumberValue(1).Compare(model.StringValue("1"))
		gt.Bool(t, ok).False()
	})
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := model.ListValue(
		model.NumberValue(100),
		model.StringValue("GB"),
		model.BoolValue(false),
	)

	data, err := json.Marshal(original)
	gt.NoError(t, err)

	var decoded model.Value
	gt.NoError(t, json.Unmarshal(data, &decoded))
	gt.Bool(t, decoded.Equal(original)).True()
}
