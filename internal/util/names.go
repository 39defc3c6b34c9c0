package util

import (
	"math/big"
	"math/rand/v2"
	"strings"

	"github.com/gofrs/uuid"
)

// UIDRoot prefixes every UID derived from a UUID (ISO/IEC 9834-8).
const UIDRoot = "2.25."

var (
	maleFirstNames = []string{
		"James", "Robert", "Michael", "David", "Thomas", "Daniel", "Paul", "Andrew",
		"Pierre", "Louis", "Hugo", "Julien", "Antoine", "Mathieu", "Nicolas", "Olivier",
	}
	femaleFirstNames = []string{
		"Mary", "Linda", "Susan", "Sarah", "Laura", "Emma", "Grace", "Alice",
		"Camille", "Chloe", "Juliette", "Manon", "Claire", "Sophie", "Lea", "Margaux",
	}
	lastNames = []string{
		"Smith", "Johnson", "Brown", "Miller", "Wilson", "Taylor", "Clark", "Walker",
		"Martin", "Bernard", "Dubois", "Moreau", "Laurent", "Girard", "Fournier", "Lefebvre",
	}
)

// PatientName returns a synthetic name in DICOM person name form
// (LAST^FIRST). Sex "M" picks a male first name, anything else a female one.
func PatientName(rng *rand.Rand, sex string) string {
	first := femaleFirstNames
	if sex == "M" {
		first = maleFirstNames
	}
	last := lastNames[rng.IntN(len(lastNames))]
	return strings.ToUpper(last) + "^" + first[rng.IntN(len(first))]
}

// DeterministicUID derives a UID from name. The same name always gives the
// same UID.
func DeterministicUID(name string) string {
	u := uuid.NewV5(uuid.NamespaceOID, name)
	return UIDRoot + new(big.Int).SetBytes(u.Bytes()).String()
}
