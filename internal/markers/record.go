package markers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Coord is a latitude or longitude that arrives either as a JSON number or
// as a numeric string (form posts and the sheet store both shapes).
type Coord float64

// UnmarshalJSON accepts 45.8, "45.8" and "".
func (c *Coord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return c.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	*c = Coord(f)
	return nil
}

// Schema documents both accepted shapes in the OpenAPI spec.
func (Coord) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		OneOf: []*huma.Schema{
			{Type: huma.TypeNumber},
			{Type: huma.TypeString},
		},
	}
}

func (c *Coord) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("coordinate %q: %w", s, err)
	}
	*c = Coord(f)
	return nil
}

// Record is a finalized pin as exchanged with the sheet store and the
// submission form. Presence of fields is not validated.
type Record struct {
	Lat      Coord  `json:"lat" doc:"Latitude (number or numeric string)" example:"45.815"`
	Lng      Coord  `json:"lng" doc:"Longitude (number or numeric string)" example:"15.981"`
	Category string `json:"category" doc:"Sound category" example:"Voda"`
	Feeling  string `json:"feeling" doc:"Feeling text containing a mood emoji" example:"Sretno 😊"`
	Comment  string `json:"comment,omitempty" doc:"Optional comment"`
	AudioURL string `json:"audioUrl" doc:"URL of the audio clip"`
}
