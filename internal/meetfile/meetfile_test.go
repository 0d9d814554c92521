package meetfile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/pkg/logger"
)

const sample = `meet:
  id: m1
  name: Open Session A
  date: 14/10/2026
  location: Main Platform
athletes:
  - id: a1
    name: Ada
    sex: female
    bodyweight: 62.4
    squat:
      - {weight: 120, lights: [good, good, good]}
      - {weight: 127.5, lights: [good, bad, bad]}
  - name: Bea
    sex: Male
    category: Master 1
    bodyweight: 121
    weight_class: 120kg
    deadlift:
      - {weight: 250}
`

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Open Session A", m.Name)
	require.Len(t, m.Athletes, 2)

	ada := m.Athletes[0]
	assert.Equal(t, model.Female, ada.Sex)
	assert.Equal(t, model.Open, ada.Category)
	assert.Equal(t, "63kg", ada.WeightClass)
	assert.Equal(t, model.FromKg(127.5), ada.Attempts[model.Squat][1].Weight)
	assert.Equal(t, model.Bad, ada.Attempts[model.Squat][1].Verdicts[2])
	assert.Equal(t, model.Weight(0), ada.Attempts[model.Squat][2].Weight)

	bea := m.Athletes[1]
	assert.NotEmpty(t, bea.ID)
	assert.Equal(t, model.Master1, bea.Category)
	assert.Equal(t, "120kg", bea.WeightClass, "explicit class is kept")
	assert.Equal(t, model.Pending, bea.Attempts[model.Deadlift][0].Verdicts[0])
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"empty":          {"", ErrInvalidFile},
		"unknown field":  {"meet: {name: x}\nbogus: 1\n", ErrInvalidFile},
		"missing name":   {"athletes:\n  - sex: Male\n", ErrInvalidFile},
		"bad sex":        {"athletes:\n  - {name: A, sex: X}\n", model.ErrUnknownSex},
		"bad verdict":    {"athletes:\n  - {name: A, sex: Male, bench: [{weight: 1, lights: [maybe]}]}\n", model.ErrUnknownVerdict},
		"four attempts":  {"athletes:\n  - {name: A, sex: Male, bench: [{weight: 1}, {weight: 2}, {weight: 3}, {weight: 4}]}\n", ErrTooManyAttempts},
		"four lights":    {"athletes:\n  - {name: A, sex: Male, bench: [{weight: 1, lights: [good, good, good, good]}]}\n", ErrTooManyLights},
		"bad category":   {"athletes:\n  - {name: A, sex: Male, category: Elder}\n", model.ErrUnknownCategory},
		"malformed yaml": {"meet: [\n", ErrInvalidFile},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	assert.Contains(t, buf.String(), "lights: [good, bad, bad]")
	assert.NotContains(t, buf.String(), "bench:", "lifts without attempts are omitted")

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meet.yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	m, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.NoError(t, Save(path, m))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestWatch(t *testing.T) {
	require.NoError(t, logger.Init())
	path := filepath.Join(t.TempDir(), "meet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan model.Meet, 8)
	failures := make(chan error, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(m model.Meet, err error) {
			// Drop overflow so a burst of events never blocks the watcher.
			if err != nil {
				select {
				case failures <- err:
				default:
				}
				return
			}
			select {
			case changes <- m:
			default:
			}
		})
	}()

	// Keep writing until the watcher is registered and reports the change.
	updated := strings.Replace(sample, "Open Session A", "Open Session B", 1)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case m := <-changes:
			if m.Name == "Open Session B" {
				break wait
			}
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	require.NoError(t, os.WriteFile(path, []byte("meet: ["), 0o644))
	select {
	case err := <-failures:
		assert.True(t, errors.Is(err, ErrInvalidFile))
	case <-time.After(5 * time.Second):
		t.Fatal("no reload failure observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), func(model.Meet, error) {})
	assert.Error(t, err)
}
