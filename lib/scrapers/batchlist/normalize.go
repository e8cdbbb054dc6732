package batchlist

import (
	"strings"

	"icaiscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const noRecordsMarker = "No records"

// the results grid always maps to these 9 positional columns; shorter
// rows are padded with empty strings, longer rows lose the excess
const tableColumns = 9

// Normalize parses the results table of a list response into flat
// records. The table is located by an id hint first ("Grid" is part of
// the generated grid control id), falling back to the only bordered
// table on the page. A page without either yields no records.
func Normalize(doc *goquery.Document, region, pou, course string) []Record {
	table := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.AttrOr("id", ""), "Grid")
	}).First()
	if table.Length() == 0 {
		table = doc.Find(`table[border="1"]`).First()
	}
	if table.Length() == 0 {
		return nil
	}

	var records []Record
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 || strings.Contains(row.Text(), noRecordsMarker) {
			return
		}

		cols := make([]string, 0, tableColumns)
		for _, cell := range cells.Nodes {
			cols = append(cols, htmlutil.CleanText(htmlutil.GetText(cell)))
		}
		for len(cols) < tableColumns {
			cols = append(cols, "")
		}

		records = append(records, Record{
			Region:         region,
			Pou:            pou,
			SelectedCourse: course,

			BatchNo:               cols[0],
			AvailableSeats:        cols[1],
			FromDate:              cols[2],
			ToDate:                cols[3],
			BatchTime:             cols[4],
			PouName:               cols[5],
			Course:                cols[6],
			OpenFor:               cols[7],
			RegistrationStartDate: cols[8],
		})
	})
	return records
}
