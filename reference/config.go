// Package reference looks up reference genome configurations by name.
//
// Locus types name the reference genome their positions refer to. A type
// shipped to another process carries the configurations of every genome
// it names, and a Registry is where those configurations come from.
package reference

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/hail-is/hailtype/codec"
	"github.com/hail-is/hailtype/types"
	"github.com/hail-is/hailtype/value"
)

// Config describes a reference genome in the JSON layout used for
// exchange.
type Config struct {
	Name      string           `json:"name"`
	Contigs   []string         `json:"contigs"`
	Lengths   map[string]int32 `json:"lengths"`
	XContigs  []string         `json:"x_contigs"`
	YContigs  []string         `json:"y_contigs"`
	MTContigs []string         `json:"mt_contigs"`
	// PAR holds the pseudoautosomal regions, each an interval of loci on
	// this genome in codec form.
	PAR []json.RawMessage `json:"par"`
}

// Validate checks that every contig has a positive length and that the
// sex and mitochondrial contigs are among the contigs.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("reference genome has no name")
	}
	if len(c.Contigs) == 0 {
		return fmt.Errorf("reference genome %s: no contigs", c.Name)
	}
	seen := make(map[string]bool, len(c.Contigs))
	for _, contig := range c.Contigs {
		if seen[contig] {
			return fmt.Errorf("reference genome %s: duplicate contig %q", c.Name, contig)
		}
		seen[contig] = true
		if c.Lengths[contig] <= 0 {
			return fmt.Errorf("reference genome %s: contig %q has no length", c.Name, contig)
		}
	}
	for _, group := range [][]string{c.XContigs, c.YContigs, c.MTContigs} {
		for _, contig := range group {
			if !seen[contig] {
				return fmt.Errorf("reference genome %s: %q is not a contig", c.Name, contig)
			}
		}
	}
	if _, err := c.PARIntervals(); err != nil {
		return fmt.Errorf("reference genome %s: %w", c.Name, err)
	}
	return nil
}

// LocusType returns the type of loci on this genome.
func (c *Config) LocusType() *types.Locus {
	return types.NewLocus(c.Name)
}

// PARIntervals decodes the pseudoautosomal regions.
func (c *Config) PARIntervals() ([]value.Interval, error) {
	t := types.NewInterval(c.LocusType())
	out := make([]value.Interval, 0, len(c.PAR))
	for _, raw := range c.PAR {
		v, err := codec.Unmarshal(t, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid pseudoautosomal region: %w", err)
		}
		iv, ok := v.(value.Interval)
		if !ok {
			return nil, fmt.Errorf("invalid pseudoautosomal region: null")
		}
		out = append(out, iv)
	}
	return out, nil
}

// ContainsLocus reports whether l lies on a contig of this genome, within
// its length. Positions are 1-based.
func (c *Config) ContainsLocus(l value.Locus) bool {
	if l.Reference != "" && l.Reference != c.Name {
		return false
	}
	length, ok := c.Lengths[l.Contig]
	return ok && l.Position >= 1 && l.Position <= length
}

// InPAR reports whether l falls inside a pseudoautosomal region.
func (c *Config) InPAR(l value.Locus) bool {
	pars, err := c.PARIntervals()
	if err != nil {
		return false
	}
	for _, iv := range pars {
		start, _ := iv.Start.(value.Locus)
		end, _ := iv.End.(value.Locus)
		if start.Contig != l.Contig || end.Contig != l.Contig {
			continue
		}
		afterStart := l.Position > start.Position || (iv.IncludesStart && l.Position == start.Position)
		beforeEnd := l.Position < end.Position || (iv.IncludesEnd && l.Position == end.Position)
		if afterStart && beforeEnd {
			return true
		}
	}
	return false
}

func (c *Config) IsXContig(contig string) bool  { return slices.Contains(c.XContigs, contig) }
func (c *Config) IsYContig(contig string) bool  { return slices.Contains(c.YContigs, contig) }
func (c *Config) IsMTContig(contig string) bool { return slices.Contains(c.MTContigs, contig) }
