package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionCollection(t *testing.T) {
	cases := []struct {
		course  string
		program string
		year    int
		want    string
	}{
		{"PG", "M.Sc CS", 1, "pg_msc_cs_year1"},
		{"UG", "B.Sc CS", 3, "ug_bsc_cs_year3"},
		{"PG", "MCA", 2, "pg_mca_year2"},
		{"UG", "B.Com (CA)", 1, "ug_bcom_ca_year1"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, PartitionCollection(tc.course, tc.program, tc.year))
	}
}

func TestPartitionCollectionStable(t *testing.T) {
	a := PartitionCollection("PG", "M.Sc CS", 1)
	b := PartitionCollection("pg", "m.sc cs", 1)
	assert.Equal(t, a, b, "partition naming is case-insensitive")
}
