package notion

import "strings"

// Page is a row of a data source.
type Page struct {
	ID         string              `json:"id"`
	Archived   bool                `json:"archived"`
	Properties map[string]Property `json:"properties"`
}

// Prop returns the named property, or the zero Property.
func (p Page) Prop(name string) Property {
	return p.Properties[name]
}

type RichText struct {
	PlainText string `json:"plain_text"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// Property holds whichever value field matches its Type.
type Property struct {
	Type        string         `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Email       *string        `json:"email,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
}

// PlainText joins title or rich text segments.
func (p Property) PlainText() string {
	segments := p.Title
	if len(segments) == 0 {
		segments = p.RichText
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

func (p Property) SelectName() string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

func (p Property) MultiSelectNames() []string {
	names := make([]string, 0, len(p.MultiSelect))
	for _, o := range p.MultiSelect {
		names = append(names, o.Name)
	}
	return names
}

func (p Property) EmailValue() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}

func (p Property) NumberValue() float64 {
	if p.Number == nil {
		return 0
	}
	return *p.Number
}

func (p Property) DateStart() string {
	if p.Date == nil {
		return ""
	}
	return p.Date.Start
}

// Write-side property values.

func TitleValue(s string) map[string]any {
	return map[string]any{"title": []any{map[string]any{"text": map[string]any{"content": s}}}}
}

func SelectValue(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func MultiSelectValue(names ...string) map[string]any {
	opts := make([]any, 0, len(names))
	for _, n := range names {
		opts = append(opts, map[string]any{"name": n})
	}
	return map[string]any{"multi_select": opts}
}

func DateStartValue(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}
