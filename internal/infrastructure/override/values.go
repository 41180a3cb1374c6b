package override

import (
	"math"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// flexInt accepts 12, 12.0, "12" and null. Anything else decodes to unset so
// that validation, not decoding, decides whether the entry survives.
type flexInt struct {
	value *int
}

func (f *flexInt) UnmarshalJSON(raw []byte) error {
	f.value = nil
	text := strings.TrimSpace(string(raw))
	text = strings.TrimSpace(strings.Trim(text, `"`))
	if text == "" || text == "null" {
		return nil
	}
	if n, err := strconv.Atoi(text); err == nil {
		f.value = &n
		return nil
	}
	if fl, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
		n := int(fl)
		f.value = &n
	}
	return nil
}

func (f flexInt) Ptr() *int {
	return f.value
}

func (f flexInt) OrZero() int {
	if f.value == nil {
		return 0
	}
	return *f.value
}

// flexPercent accepts "27%", "27", 27 and 27.5. The value is kept as written
// with a trailing "%".
type flexPercent struct {
	value string
}

func (p *flexPercent) UnmarshalJSON(raw []byte) error {
	p.value = ""
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return nil
	}
	text = strings.TrimSpace(strings.Trim(text, `"`))
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "%") {
		text += "%"
	}
	p.value = text
	return nil
}

func (p flexPercent) OrZero() string {
	if p.value == "" {
		return "0%"
	}
	return p.value
}

// aliasList accepts a single string or a list of strings.
type aliasList []string

func (a *aliasList) UnmarshalJSON(raw []byte) error {
	*a = nil
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}
	if strings.HasPrefix(text, "[") {
		var items []any
		if err := sonic.Unmarshal(raw, &items); err != nil {
			return nil
		}
		for _, item := range items {
			if value, ok := item.(string); ok {
				*a = append(*a, value)
			}
		}
		return nil
	}
	var single string
	if err := sonic.Unmarshal(raw, &single); err == nil {
		*a = aliasList{single}
	}
	return nil
}
