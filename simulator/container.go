package simulator

import (
	"errors"
	"fmt"

	"github.com/kilianp07/autosampler/core/model"
)

var (
	// ErrDuplicateData is returned when a holder already has one of the results.
	ErrDuplicateData = errors.New("duplicate data")
	// ErrContainerFull is returned when a container has no room left.
	ErrContainerFull = errors.New("container full")
)

// store is the result storage shared by containers and experiments.
type store struct {
	data []model.ScienceData
}

func (s *store) Data() []model.ScienceData {
	out := make([]model.ScienceData, len(s.data))
	copy(out, s.data)
	return out
}

func (s *store) HasData(d model.ScienceData) bool {
	for _, sd := range s.data {
		if sd.SubjectID == d.SubjectID {
			return true
		}
	}
	return false
}

// merge appends the results of src, either rejecting or dropping
// duplicates. Nothing is stored on error.
func (s *store) merge(src model.Holder, dump bool, capacity int) error {
	incoming := src.Data()
	keep := make([]model.ScienceData, 0, len(incoming))
	for _, d := range incoming {
		if s.HasData(d) {
			if !dump {
				return fmt.Errorf("%w: %s", ErrDuplicateData, d.SubjectID)
			}
			continue
		}
		keep = append(keep, d)
	}
	if capacity > 0 && len(s.data)+len(keep) > capacity {
		return ErrContainerFull
	}
	s.data = append(s.data, keep...)
	src.ClearData()
	return nil
}

// Container is a part that stores results without producing any.
type Container struct {
	store
	id       string
	title    string
	vesselID string
	// Capacity bounds stored results; 0 means unbounded.
	Capacity int
	// Fail, when set, is returned by the next StoreData call.
	Fail error
}

// NewContainer returns an empty container.
func NewContainer(id, title string) *Container {
	return &Container{id: id, title: title}
}

func (c *Container) HolderID() string { return c.id }
func (c *Container) Title() string    { return c.title }
func (c *Container) VesselID() string { return c.vesselID }
func (c *Container) ClearData()       { c.data = nil }

func (c *Container) StoreData(src model.Holder, dumpDuplicates bool) error {
	if err := c.Fail; err != nil {
		c.Fail = nil
		return err
	}
	if src == nil {
		return nil
	}
	return c.merge(src, dumpDuplicates, c.Capacity)
}
