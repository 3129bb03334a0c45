package mockapi

import (
	"strings"

	"github.com/sells-group/lead-verify/pkg/microbilt"
)

// person is a known individual in the mock background directory.
type person struct {
	Name            string
	Phone           string // digits only
	Addresses       []microbilt.Address
	CriminalRecords []microbilt.CriminalRecord
	Bankruptcies    []microbilt.Bankruptcy
}

var directory = []person{
	{
		Name:  "John Doe",
		Phone: "1234567890",
		Addresses: []microbilt.Address{
			{Street: "123 Main St", City: "Springfield", State: "IL", Zip: "62701", Since: "2015-06"},
		},
	},
	{
		Name:  "Jane Smith",
		Phone: "9876543210",
		Addresses: []microbilt.Address{
			{Street: "42 Oak Ave", City: "Austin", State: "TX", Zip: "78701", Since: "2019-01"},
		},
	},
	{
		Name:  "Robert Johnson",
		Phone: "5551234567",
		Addresses: []microbilt.Address{
			{Street: "9 Elm Ct", City: "Denver", State: "CO", Zip: "80202", Since: "2012-03"},
		},
		CriminalRecords: []microbilt.CriminalRecord{
			{Offense: "Theft", Date: "2016-08-14", Jurisdiction: "Denver County, CO", Disposition: "Convicted"},
		},
	},
	{
		Name:  "Maria Garcia",
		Phone: "3332221111",
		Bankruptcies: []microbilt.Bankruptcy{
			{Chapter: "7", FiledAt: "2018-11-02", Court: "S.D. Fla.", Status: "Discharged"},
		},
	},
	{
		Name:  "James Wilson",
		Phone: "4445556666",
		CriminalRecords: []microbilt.CriminalRecord{
			{Offense: "Fraud", Date: "2014-02-20", Jurisdiction: "Cook County, IL", Disposition: "Convicted"},
		},
		Bankruptcies: []microbilt.Bankruptcy{
			{Chapter: "13", FiledAt: "2020-05-11", Court: "N.D. Ill.", Status: "Open"},
		},
	},
	{
		Name:  "Susan Brown",
		Phone: "7778889999",
	},
}

// nameVariations maps informal names onto directory entries.
var nameVariations = map[string]string{
	"bob johnson": "robert johnson",
	"rob johnson": "robert johnson",
	"johnny doe":  "john doe",
	"jon doe":     "john doe",
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// lookup finds a directory entry by name, resolving known variations.
func lookup(name string) (person, bool) {
	key := normalizeName(name)
	if canonical, ok := nameVariations[key]; ok {
		key = canonical
	}
	for _, p := range directory {
		if normalizeName(p.Name) == key {
			return p, true
		}
	}
	return person{}, false
}
