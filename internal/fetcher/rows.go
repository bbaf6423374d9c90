package fetcher

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/crossbridge-edu/advisory-cli/internal/model"
)

// ParseSchoolRow converts one catalog feed row into a School. Expected
// column order: name, country, ranking, website. Ranking may be empty or
// non-numeric ("N/A"); it parses as 0.
func ParseSchoolRow(cells []string) (model.School, error) {
	if len(cells) < 2 {
		return model.School{}, eris.Errorf("catalog row: want at least 2 columns, got %d", len(cells))
	}
	name := strings.TrimSpace(cells[0])
	if name == "" {
		return model.School{}, eris.New("catalog row: empty school name")
	}

	s := model.School{
		Name:    name,
		Country: strings.TrimSpace(cells[1]),
	}
	if len(cells) > 2 {
		if rank, err := strconv.Atoi(strings.TrimSpace(cells[2])); err == nil {
			s.Ranking = rank
		}
	}
	if len(cells) > 3 {
		s.Website = strings.TrimSpace(cells[3])
	}
	return s, nil
}

// ParseRosterRow converts one roster sheet row into a StudentProfile.
// Expected column order: name, email, phone, current school, major, GPA,
// target degree, target country, mentor. Trailing columns are optional.
func ParseRosterRow(cells []string) (model.StudentProfile, error) {
	if len(cells) < 2 {
		return model.StudentProfile{}, eris.Errorf("roster row: want at least 2 columns, got %d", len(cells))
	}
	name := strings.TrimSpace(cells[0])
	if name == "" {
		return model.StudentProfile{}, eris.New("roster row: empty student name")
	}

	p := model.StudentProfile{
		Name:  name,
		Email: strings.TrimSpace(cells[1]),
	}
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	p.Phone = get(2)
	p.CurrentSchool = get(3)
	p.Major = get(4)
	if raw := get(5); raw != "" {
		gpa, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.StudentProfile{}, eris.Wrapf(err, "roster row: bad GPA %q for %s", raw, name)
		}
		p.GPA = gpa
	}
	p.TargetDegree = get(6)
	p.TargetCountry = get(7)
	p.MentorName = get(8)
	return p, nil
}
