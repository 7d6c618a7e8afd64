package contract

import (
	"regexp"
	"strconv"
	"strings"
)

// headingPattern matches numbered, upper-case section headings on their own
// line, e.g. "5. LIMITATION OF LIABILITY".
var headingPattern = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.[ \t]+([A-Z][A-Z0-9 ,&'()/\-]*[A-Z0-9)])[ \t]*\r?$`)

// signaturePattern marks the start of the execution block, which is not a clause.
var signaturePattern = regexp.MustCompile(`(?m)^[ \t]*IN WITNESS WHEREOF`)

// clauseTypes maps heading keywords to clause types. Keywords are matched
// at the start of a word, so "DETERMINATION" is not a termination clause.
// First match wins.
var clauseTypes = []struct {
	keyword *regexp.Regexp
	typ     string
}{
	{keyword(`liabil`), "Liability"},
	{keyword(`indemn`), "Indemnity"},
	{keyword(`confiden`), "Confidentiality"},
	{keyword(`non-disclosure`), "Confidentiality"},
	{keyword(`governing law`), "Legal"},
	{keyword(`jurisdiction`), "Legal"},
	{keyword(`dispute`), "Legal"},
	{keyword(`compensation`), "Payment"},
	{keyword(`payment`), "Payment"},
	{keyword(`fees`), "Payment"},
	{keyword(`terminat`), "Termination"},
	{keyword(`terms?\b`), "Termination"},
	{keyword(`renewal`), "Termination"},
	{keyword(`data protection`), "Data Protection"},
	{keyword(`privacy`), "Data Protection"},
	{keyword(`intellectual property`), "Intellectual Property"},
	{keyword(`force majeure`), "Force Majeure"},
	{keyword(`insurance`), "Insurance"},
	{keyword(`services`), "Services"},
	{keyword(`scope`), "Services"},
}

func keyword(expr string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + expr)
}

// smallWords stay lower case inside titles.
var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"for": true, "in": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "with": true,
}

// ExtractClauses splits contract content into clauses on numbered section
// headings. Clause IDs are "section-N"; a repeated number gets a "-2",
// "-3", ... suffix. The recitals before the first heading and the signature block
// after "IN WITNESS WHEREOF" are not clauses. Content with no headings
// becomes a single "Full Text" clause; blank content yields nil.
func ExtractClauses(content string) []Clause {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	end := len(content)
	if loc := signaturePattern.FindStringIndex(content); loc != nil {
		end = loc[0]
	}
	body := content[:end]

	headings := headingPattern.FindAllStringSubmatchIndex(body, -1)
	if len(headings) == 0 {
		return []Clause{{
			ID:    "section-1",
			Title: "Full Text",
			Type:  "General",
			Text:  strings.TrimSpace(content),
		}}
	}

	clauses := make([]Clause, 0, len(headings))
	seen := make(map[string]int, len(headings))
	for i, h := range headings {
		number := body[h[2]:h[3]]
		heading := body[h[4]:h[5]]

		textEnd := len(body)
		if i+1 < len(headings) {
			textEnd = headings[i+1][0]
		}
		text := strings.TrimSpace(body[h[1]:textEnd])
		if text == "" {
			continue
		}

		// Schedules and annexes often restart their numbering.
		id := "section-" + number
		seen[id]++
		if n := seen[id]; n > 1 {
			id += "-" + strconv.Itoa(n)
		}

		clauses = append(clauses, Clause{
			ID:    id,
			Title: titleCase(heading),
			Type:  ClassifyHeading(heading),
			Text:  text,
		})
	}
	return clauses
}

// ClassifyHeading returns the clause type for a section heading.
func ClassifyHeading(heading string) string {
	lower := strings.ToLower(heading)
	for _, ct := range clauseTypes {
		if ct.keyword.MatchString(lower) {
			return ct.typ
		}
	}
	return "General"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if i > 0 && smallWords[w] {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
