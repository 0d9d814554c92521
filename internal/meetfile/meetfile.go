// Package meetfile reads and writes meets as YAML documents.
//
// A file looks like:
//
//	meet:
//	  name: Open Session A
//	  date: 14/10/2026
//	athletes:
//	  - name: Ada
//	    sex: Female
//	    bodyweight: 62.4
//	    squat:
//	      - {weight: 120, lights: [good, good, good]}
//	      - {weight: 127.5, lights: [good, bad, bad]}
//
// Missing ids are generated and missing weight classes are derived from sex
// and bodyweight.
package meetfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/weightclass"
)

// File is the document root.
type File struct {
	Meet     MeetDoc      `yaml:"meet"`
	Athletes []AthleteDoc `yaml:"athletes"`
}

// MeetDoc holds the meet details.
type MeetDoc struct {
	ID       string `yaml:"id,omitempty"`
	Name     string `yaml:"name"`
	Date     string `yaml:"date,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// AthleteDoc is one roster entry.
type AthleteDoc struct {
	ID          string       `yaml:"id,omitempty"`
	Name        string       `yaml:"name"`
	Sex         string       `yaml:"sex"`
	Category    string       `yaml:"category,omitempty"`
	Bodyweight  float64      `yaml:"bodyweight"`
	WeightClass string       `yaml:"weight_class,omitempty"`
	Squat       []AttemptDoc `yaml:"squat,omitempty"`
	Bench       []AttemptDoc `yaml:"bench,omitempty"`
	Deadlift    []AttemptDoc `yaml:"deadlift,omitempty"`
}

// AttemptDoc is one attempt. Lights lists judge verdicts in seat order;
// missing lights are pending.
type AttemptDoc struct {
	Weight float64  `yaml:"weight"`
	Lights []string `yaml:"lights,omitempty,flow"`
}

func (d *AthleteDoc) lift(l model.Lift) *[]AttemptDoc {
	switch l {
	case model.Bench:
		return &d.Bench
	case model.Deadlift:
		return &d.Deadlift
	default:
		return &d.Squat
	}
}

// Decode parses a YAML meet document.
func Decode(r io.Reader) (model.Meet, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Meet{}, fmt.Errorf("%w: empty document", ErrInvalidFile)
		}
		return model.Meet{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return f.Meet.toModel(f.Athletes)
}

// Encode writes m as a YAML meet document.
func Encode(w io.Writer, m model.Meet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromModel(m)); err != nil {
		return fmt.Errorf("encode meet file: %w", err)
	}
	return enc.Close()
}

// Load reads the meet file at path.
func Load(path string) (model.Meet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Meet{}, fmt.Errorf("read meet file %s: %w", path, err)
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return model.Meet{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes m to path, replacing any existing file.
func Save(path string, m model.Meet) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write meet file %s: %w", path, err)
	}
	return nil
}

// FromModel converts a meet to its document form. Attempts after the last
// declared one are omitted.
func FromModel(m model.Meet) File {
	f := File{
		Meet:     MeetDoc{ID: m.ID, Name: m.Name, Date: m.Date, Location: m.Location},
		Athletes: make([]AthleteDoc, 0, len(m.Athletes)),
	}
	for _, a := range m.Athletes {
		d := AthleteDoc{
			ID:          a.ID,
			Name:        a.Name,
			Sex:         string(a.Sex),
			Category:    string(a.Category),
			Bodyweight:  a.Bodyweight.Kg(),
			WeightClass: a.WeightClass,
		}
		for _, l := range model.Lifts() {
			set := a.Set(l)
			last := -1
			for i, at := range set {
				if at.Weight > 0 || at.Verdicts != ([model.JudgeCount]model.Verdict{}) {
					last = i
				}
			}
			docs := d.lift(l)
			for _, at := range set[:last+1] {
				*docs = append(*docs, fromAttempt(at))
			}
		}
		f.Athletes = append(f.Athletes, d)
	}
	return f
}

func fromAttempt(at model.Attempt) AttemptDoc {
	doc := AttemptDoc{Weight: at.Weight.Kg()}
	if at.Verdicts == ([model.JudgeCount]model.Verdict{}) {
		return doc
	}
	doc.Lights = make([]string, 0, model.JudgeCount)
	for _, v := range at.Verdicts {
		doc.Lights = append(doc.Lights, v.String())
	}
	return doc
}

func (d MeetDoc) toModel(docs []AthleteDoc) (model.Meet, error) {
	m := model.Meet{
		ID:       d.ID,
		Name:     d.Name,
		Date:     d.Date,
		Location: d.Location,
		Athletes: make([]model.Athlete, 0, len(docs)),
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for i := range docs {
		a, err := docs[i].toModel()
		if err != nil {
			return model.Meet{}, fmt.Errorf("athlete %d (%s): %w", i+1, docs[i].Name, err)
		}
		m.Athletes = append(m.Athletes, a)
	}
	return m, nil
}

func (d *AthleteDoc) toModel() (model.Athlete, error) {
	if d.Name == "" {
		return model.Athlete{}, fmt.Errorf("%w: name is required", ErrInvalidFile)
	}
	sex, err := model.ParseSex(d.Sex)
	if err != nil {
		return model.Athlete{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	a := model.Athlete{
		ID:          d.ID,
		Name:        d.Name,
		Sex:         sex,
		Category:    model.Open,
		Bodyweight:  model.FromKg(d.Bodyweight),
		WeightClass: d.WeightClass,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if d.Category != "" {
		if a.Category, err = model.ParseCategory(d.Category); err != nil {
			return model.Athlete{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
	}
	if a.WeightClass == "" {
		a.WeightClass = weightclass.Lookup(a.Sex, a.Bodyweight)
	}

	for _, l := range model.Lifts() {
		docs := *d.lift(l)
		if len(docs) > model.AttemptsPerLift {
			return model.Athlete{}, fmt.Errorf("%s: %w", l, ErrTooManyAttempts)
		}
		for i, doc := range docs {
			at, err := doc.toModel()
			if err != nil {
				return model.Athlete{}, fmt.Errorf("%s attempt %d: %w", l, i+1, err)
			}
			a.Attempts[l][i] = at
		}
	}
	return a, nil
}

func (d AttemptDoc) toModel() (model.Attempt, error) {
	at := model.Attempt{Weight: model.FromKg(d.Weight)}
	if len(d.Lights) > model.JudgeCount {
		return model.Attempt{}, ErrTooManyLights
	}
	for i, s := range d.Lights {
		v, err := model.ParseVerdict(s)
		if err != nil {
			return model.Attempt{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		at.Verdicts[i] = v
	}
	return at, nil
}
