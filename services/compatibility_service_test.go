package services

import (
	"testing"
	"time"

	"kindred_server/models"

	"github.com/stretchr/testify/assert"
)

var scoringNow = time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name string
		dob  string
		now  time.Time
		want int
	}{
		{"birthday already passed this year", "2004-05-10", scoringNow, 22},
		{"day before birthday", "2004-05-10", time.Date(2026, time.May, 9, 0, 0, 0, 0, time.UTC), 21},
		{"on the birthday", "2004-05-10", time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC), 22},
		{"birthday later this year", "2004-12-01", scoringNow, 21},
		{"unparseable date", "not-a-date", scoringNow, -1},
		{"empty date", "", scoringNow, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(tt.dob, tt.now))
		})
	}
}

func baseProfile(id string) models.UserProfile {
	return models.UserProfile{
		UserID:    id,
		School:    "Ashford",
		Majors:    []string{"Computer Science"},
		ClassYear: 2027,
		DOB:       "2004-05-10",
		Interests: []string{"climbing", "film"},
		Clubs:     []string{"chess"},
		Gender:    "woman",
	}
}

func TestSatisfiesPreference(t *testing.T) {
	profile := baseProfile("u1")

	t.Run("empty preference imposes no constraints", func(t *testing.T) {
		assert.True(t, SatisfiesPreference(profile, models.MatchPreference{}, scoringNow))
	})

	t.Run("gender restriction fails closed", func(t *testing.T) {
		pref := models.MatchPreference{Genders: []string{"man"}}
		assert.False(t, SatisfiesPreference(profile, pref, scoringNow))

		pref.Genders = []string{"man", "woman"}
		assert.True(t, SatisfiesPreference(profile, pref, scoringNow))
	})

	t.Run("age range is inclusive", func(t *testing.T) {
		// profile is 22 at scoringNow
		assert.True(t, SatisfiesPreference(profile, models.MatchPreference{AgeMin: 22, AgeMax: 22}, scoringNow))
		assert.False(t, SatisfiesPreference(profile, models.MatchPreference{AgeMin: 23, AgeMax: 30}, scoringNow))
		assert.False(t, SatisfiesPreference(profile, models.MatchPreference{AgeMin: 18, AgeMax: 21}, scoringNow))
	})

	t.Run("zero age range imposes no constraint", func(t *testing.T) {
		assert.True(t, SatisfiesPreference(profile, models.MatchPreference{AgeMin: 0, AgeMax: 0}, scoringNow))
	})

	t.Run("class year matches against labels", func(t *testing.T) {
		assert.True(t, SatisfiesPreference(profile, models.MatchPreference{ClassYears: []string{"2027", "2028"}}, scoringNow))
		assert.False(t, SatisfiesPreference(profile, models.MatchPreference{ClassYears: []string{"2026"}}, scoringNow))
	})

	t.Run("school restriction", func(t *testing.T) {
		assert.True(t, SatisfiesPreference(profile, models.MatchPreference{Schools: []string{"Ashford"}}, scoringNow))
		assert.False(t, SatisfiesPreference(profile, models.MatchPreference{Schools: []string{"Redwood"}}, scoringNow))
	})

	t.Run("major restriction intersects the profile's majors", func(t *testing.T) {
		assert.True(t, SatisfiesPreference(profile, models.MatchPreference{Majors: []string{"Computer Science", "Math"}}, scoringNow))
		assert.False(t, SatisfiesPreference(profile, models.MatchPreference{Majors: []string{"Biology"}}, scoringNow))
	})
}

func TestIsMutuallyEligible(t *testing.T) {
	x := baseProfile("x")
	y := baseProfile("y")
	y.Gender = "man"

	open := models.MatchPreference{}
	womenOnly := models.MatchPreference{Genders: []string{"woman"}}

	t.Run("both filters must accept the other party", func(t *testing.T) {
		// y's preference would accept x, but x's excludes y's gender
		assert.False(t, IsMutuallyEligible(x, womenOnly, y, open, scoringNow))
		assert.False(t, IsMutuallyEligible(y, open, x, womenOnly, scoringNow))
	})

	t.Run("mutual acceptance", func(t *testing.T) {
		assert.True(t, IsMutuallyEligible(x, open, y, open, scoringNow))
	})
}

func TestCompatibilityScore(t *testing.T) {
	t.Run("deterministic weighted sum", func(t *testing.T) {
		a := baseProfile("a")
		b := baseProfile("b")
		// same school 20, one shared major 5, same class year 15, same age 15,
		// two shared interests 8, one shared club 5
		assert.Equal(t, 68, CompatibilityScore(a, b, scoringNow))
	})

	t.Run("symmetric for an unordered pair", func(t *testing.T) {
		a := baseProfile("a")
		b := baseProfile("b")
		b.School = "Redwood"
		b.ClassYear = 2025
		b.Interests = []string{"film"}
		assert.Equal(t, CompatibilityScore(a, b, scoringNow), CompatibilityScore(b, a, scoringNow))
	})

	t.Run("component caps", func(t *testing.T) {
		a := baseProfile("a")
		b := baseProfile("b")
		a.Majors = []string{"m1", "m2", "m3", "m4"}
		b.Majors = a.Majors // 4 shared majors would be 20, capped at 15
		a.Interests = []string{"i1", "i2", "i3", "i4", "i5", "i6"}
		b.Interests = a.Interests // 24 capped at 20
		a.Clubs = []string{"c1", "c2", "c3", "c4"}
		b.Clubs = a.Clubs // 20 capped at 15
		// school 20 + majors 15 + year 15 + age 15 + interests 20 + clubs 15
		assert.Equal(t, 100, CompatibilityScore(a, b, scoringNow))
	})

	t.Run("proximity components floor at zero", func(t *testing.T) {
		a := baseProfile("a")
		b := baseProfile("b")
		b.ClassYear = 2033 // 6 years apart: 15-18 < 0
		b.DOB = "1996-05-10"
		b.School = "Redwood"
		b.Majors = nil
		b.Interests = nil
		b.Clubs = nil
		assert.Equal(t, 0, CompatibilityScore(a, b, scoringNow))
	})

	t.Run("duplicate entries count once", func(t *testing.T) {
		a := baseProfile("a")
		b := baseProfile("b")
		a.Interests = []string{"film"}
		b.Interests = []string{"film", "film", "film"}
		a.School, b.School = "", ""
		a.Majors, b.Majors = nil, nil
		a.Clubs, b.Clubs = nil, nil
		// year 15 + age 15 + one interest 4
		assert.Equal(t, 34, CompatibilityScore(a, b, scoringNow))
	})
}
