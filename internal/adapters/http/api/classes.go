package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/weightclass"
)

// ClassesHandler serves the weight class table and single lookups.
type ClassesHandler struct {
	table weightclass.Table
}

// NewClassesHandler creates a handler over the default table.
func NewClassesHandler() *ClassesHandler {
	return &ClassesHandler{table: weightclass.Default()}
}

type classResponse struct {
	Sex         string   `json:"sex"`
	Bodyweight  float64  `json:"bodyweight,omitempty"`
	WeightClass string   `json:"weight_class,omitempty"`
	Classes     []string `json:"classes,omitempty"`
}

// HandleGetClasses handles GET /weight-classes?sex=&bodyweight=. Without a
// bodyweight it lists the classes for the sex.
func (h *ClassesHandler) HandleGetClasses(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_weight_classes"
	q := r.URL.Query()
	sex, err := model.ParseSex(q.Get("sex"))
	if err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	raw := q.Get("bodyweight")
	if raw == "" {
		labels := make([]string, 0, len(h.table[sex]))
		for _, c := range h.table[sex] {
			labels = append(labels, c.Label)
		}
		writeJSON(w, http.StatusOK, classResponse{Sex: string(sex), Classes: labels})
		return
	}

	kg, err := strconv.ParseFloat(raw, 64)
	if err != nil || kg <= 0 {
		writeServiceError(w, op, fmt.Errorf("%w: bodyweight must be a positive number", ErrBadRequest))
		return
	}
	bw := model.FromKg(kg)
	writeJSON(w, http.StatusOK, classResponse{
		Sex:         string(sex),
		Bodyweight:  bw.Kg(),
		WeightClass: h.table.Lookup(sex, bw),
	})
}
