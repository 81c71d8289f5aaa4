package verapdf

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseReport extracts the validated document's name and the list of failed
// rules from a veraPDF XML report. Rules appear as
// <rule status="failed" clause="7.1" specification="..." tags="...">
// with a <description> child; some report variants use <check> instead.
// Violations are returned raw (duplicates included); deduplication is the
// aggregator's concern.
func ParseReport(r io.Reader) (string, []Violation, error) {
	decoder := xml.NewDecoder(r)

	var (
		pdfName    string
		violations []Violation
		checks     []Violation
		inItem     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("malformed validator report: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "item":
				inItem = true
			case "name":
				// veraPDF stores the original PDF path in jobs/job/item/name
				if inItem && pdfName == "" {
					var text string
					if err := decoder.DecodeElement(&text, &el); err != nil {
						return "", nil, fmt.Errorf("malformed validator report: %w", err)
					}
					pdfName = strings.TrimSpace(text)
				}
			case "rule":
				viol, failed, err := decodeRule(decoder, el)
				if err != nil {
					return "", nil, err
				}
				if failed {
					violations = append(violations, viol)
				}
			case "check":
				viol, failed, err := decodeRule(decoder, el)
				if err != nil {
					return "", nil, err
				}
				if failed {
					checks = append(checks, viol)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "item" {
				inItem = false
			}
		}
	}

	if len(violations) == 0 {
		violations = checks
	}
	return pdfName, violations, nil
}

// ParseReportFile parses one persisted XML report. A malformed report is a
// data-integrity problem the operator must fix, so the error carries the
// offending file path.
func ParseReportFile(path string) (string, []Violation, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("cannot open validator report %s: %w", path, err)
	}
	defer f.Close()

	pdfName, violations, err := ParseReport(f)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse XML report %s: %w", path, err)
	}
	if pdfName == "" {
		// Fall back to the report path when the PDF name is absent
		pdfName = path
	}
	return pdfName, violations, nil
}

// ruleElement mirrors one <rule> (or <check>) element of the report.
type ruleElement struct {
	Status        string `xml:"status,attr"`
	Clause        string `xml:"clause,attr"`
	ClauseID      string `xml:"clauseId,attr"`
	Test          string `xml:"test,attr"`
	Specification string `xml:"specification,attr"`
	Tags          string `xml:"tags,attr"`
	Description   string `xml:"description"`
}

func decodeRule(decoder *xml.Decoder, start xml.StartElement) (Violation, bool, error) {
	var el ruleElement
	if err := decoder.DecodeElement(&el, &start); err != nil {
		return Violation{}, false, fmt.Errorf("malformed validator report: %w", err)
	}

	status := strings.ToLower(el.Status)
	if status != "" && status != "failed" {
		return Violation{}, false, nil
	}

	clause := el.Clause
	if clause == "" {
		clause = el.ClauseID
	}
	if clause == "" {
		clause = el.Test
	}
	if clause == "" {
		clause = "unknown"
	}

	return Violation{
		Clause:        clause,
		Specification: el.Specification,
		Tags:          el.Tags,
		Description:   strings.TrimSpace(el.Description),
	}, true, nil
}
