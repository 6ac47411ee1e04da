package domain

import (
	"errors"
	"strings"
)

// Borough identifica una de las cinco particiones geograficas de NYC.
type Borough string

const (
	BoroughManhattan    Borough = "Manhattan"
	BoroughBrooklyn     Borough = "Brooklyn"
	BoroughQueens       Borough = "Queens"
	BoroughBronx        Borough = "Bronx"
	BoroughStatenIsland Borough = "Staten Island"
)

// ValidBoroughs lista los boroughs admitidos en el orden en que se muestran.
var ValidBoroughs = []Borough{
	BoroughManhattan,
	BoroughBrooklyn,
	BoroughQueens,
	BoroughBronx,
	BoroughStatenIsland,
}

var ErrInvalidBorough = errors.New("invalid borough")

// ParseBorough normaliza la entrada (sin distinguir mayusculas) a un Borough valido.
func ParseBorough(raw string) (Borough, error) {
	normalized := strings.Join(strings.Fields(raw), " ")
	for _, b := range ValidBoroughs {
		if strings.EqualFold(string(b), normalized) {
			return b, nil
		}
	}
	return "", ErrInvalidBorough
}

func (b Borough) String() string {
	return string(b)
}
