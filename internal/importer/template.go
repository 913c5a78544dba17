package importer

import (
	"os"

	"github.com/rotisserie/eris"
)

// TemplateCSV is the downloadable reference file demonstrating the
// expected column names.
const TemplateCSV = `Company Name,Country,Website,Email,Phone,Contact Name,Contact Designation,Status,Lead Score,Notes,Followup Stage,Call Booked,Lead Owner
Acme Industries,India,https://acme.example.com,sales@acme.example.com,+91 98765 43210,Priya Sharma,Procurement Head,New,75,Met at trade fair,Second touch,Yes,Jane Doe
`

// WriteTemplate writes the sample CSV template to path.
func WriteTemplate(path string) error {
	if err := os.WriteFile(path, []byte(TemplateCSV), 0o644); err != nil {
		return eris.Wrapf(err, "importer: write template %s", path)
	}
	return nil
}
