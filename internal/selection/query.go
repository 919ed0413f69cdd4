package selection

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// rectQuery binds the x0, y0, x1 and y1 query parameters.
type rectQuery struct {
	X0 *float64 `validate:"required"`
	Y0 *float64 `validate:"required"`
	X1 *float64 `validate:"required"`
	Y1 *float64 `validate:"required"`
}

// FromQuery builds a gesture from x0, y0, x1 and y1 query parameters. A
// missing or empty parameter yields an error wrapping ErrIncomplete; a
// malformed one yields a plain parse error.
func FromQuery(q url.Values) (Gesture, error) {
	var rq rectQuery
	fields := []struct {
		name string
		dst  **float64
	}{
		{"x0", &rq.X0}, {"y0", &rq.Y0}, {"x1", &rq.X1}, {"y1", &rq.Y1},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Gesture{}, fmt.Errorf("invalid %s %q", f.name, raw)
		}
		*f.dst = &v
	}

	if err := validate.Struct(rq); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, strings.ToLower(fe.Field()))
			}
			return Gesture{}, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
		}
		return Gesture{}, err
	}

	return Gesture{
		Press:   &Corner{X: *rq.X0, Y: *rq.Y0},
		Release: &Corner{X: *rq.X1, Y: *rq.Y1},
	}, nil
}
