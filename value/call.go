package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Call is a genotype call: the allele indices carried by a sample and
// whether their order is phased.
type Call struct {
	Alleles []int
	Phased  bool
}

func (c Call) Ploidy() int { return len(c.Alleles) }

// String returns the VCF-style spelling of the call: "-" without alleles,
// "|0" for a phased haploid call, otherwise alleles joined by "|" when
// phased or "/" when not.
func (c Call) String() string {
	switch len(c.Alleles) {
	case 0:
		return "-"
	case 1:
		if c.Phased {
			return "|" + strconv.Itoa(c.Alleles[0])
		}
		return strconv.Itoa(c.Alleles[0])
	}
	sep := "/"
	if c.Phased {
		sep = "|"
	}
	parts := make([]string, len(c.Alleles))
	for i, a := range c.Alleles {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, sep)
}

// ParseCall parses the spelling produced by Call.String.
func ParseCall(s string) (Call, error) {
	switch {
	case s == "-":
		return Call{}, nil
	case strings.HasPrefix(s, "|"):
		a, err := parseAllele(s[1:])
		if err != nil {
			return Call{}, fmt.Errorf("invalid call %q: %w", s, err)
		}
		return Call{Alleles: []int{a}, Phased: true}, nil
	}
	phased := strings.Contains(s, "|")
	sep := "/"
	if phased {
		sep = "|"
		if strings.Contains(s, "/") {
			return Call{}, fmt.Errorf("invalid call %q: mixed phasing", s)
		}
	}
	parts := strings.Split(s, sep)
	alleles := make([]int, len(parts))
	for i, p := range parts {
		a, err := parseAllele(p)
		if err != nil {
			return Call{}, fmt.Errorf("invalid call %q: %w", s, err)
		}
		alleles[i] = a
	}
	return Call{Alleles: alleles, Phased: phased && len(alleles) > 1}, nil
}

func parseAllele(s string) (int, error) {
	a, err := strconv.Atoi(s)
	if err != nil || a < 0 {
		return 0, fmt.Errorf("bad allele %q", s)
	}
	return a, nil
}
