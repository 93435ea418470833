package services

import (
	"strconv"
	"time"

	"kindred_server/models"
)

// Compatibility rules are pure functions: no I/O, no clock reads. Callers
// pass the evaluation time so scoring stays deterministic and testable.

// AgeAt computes whole years between a "2006-01-02"-formatted birth date and
// now, decrementing when the birthday has not yet occurred this year.
// Returns -1 for an unparseable date.
func AgeAt(dob string, now time.Time) int {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return -1
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// SatisfiesPreference reports whether profile passes pref's filter. Each axis
// with a non-empty restriction must accept the profile's value; empty lists
// (and an ageMin/ageMax of 0/0) impose no constraint. Fails closed: a
// declared restriction with no intersection rejects the profile.
func SatisfiesPreference(profile models.UserProfile, pref models.MatchPreference, now time.Time) bool {
	if len(pref.Genders) > 0 && !containsString(pref.Genders, profile.Gender) {
		return false
	}

	if pref.AgeMin > 0 || pref.AgeMax > 0 {
		age := AgeAt(profile.DOB, now)
		if age < pref.AgeMin || age > pref.AgeMax {
			return false
		}
	}

	if len(pref.ClassYears) > 0 && !containsString(pref.ClassYears, strconv.Itoa(profile.ClassYear)) {
		return false
	}

	if len(pref.Schools) > 0 && !containsString(pref.Schools, profile.School) {
		return false
	}

	if len(pref.Majors) > 0 && countOverlap(pref.Majors, profile.Majors) == 0 {
		return false
	}

	return true
}

// IsMutuallyEligible requires each party's profile to pass the *other*
// party's filter.
func IsMutuallyEligible(profileA models.UserProfile, prefA models.MatchPreference, profileB models.UserProfile, prefB models.MatchPreference, now time.Time) bool {
	return SatisfiesPreference(profileB, prefA, now) && SatisfiesPreference(profileA, prefB, now)
}

// CompatibilityScore computes the weighted desirability score in [0,100] for
// an unordered pair. Components are additive and independently capped:
//
//	Same school            20
//	Major overlap          min(15, 5 per shared major)
//	Class-year proximity   max(0, 15 - 3 per year apart)
//	Age proximity          max(0, 15 - 2 per year apart)
//	Interest overlap       min(20, 4 per shared interest)
//	Club overlap           min(15, 5 per shared club)
func CompatibilityScore(a, b models.UserProfile, now time.Time) int {
	score := 0

	if a.School != "" && a.School == b.School {
		score += 20
	}

	score += capAt(5*countOverlap(a.Majors, b.Majors), 15)

	score += floorZero(15 - 3*absInt(a.ClassYear-b.ClassYear))

	ageA, ageB := AgeAt(a.DOB, now), AgeAt(b.DOB, now)
	if ageA >= 0 && ageB >= 0 {
		score += floorZero(15 - 2*absInt(ageA-ageB))
	}

	score += capAt(4*countOverlap(a.Interests, b.Interests), 20)

	score += capAt(5*countOverlap(a.Clubs, b.Clubs), 15)

	return score
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func countOverlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	count := 0
	for _, v := range b {
		if _, ok := set[v]; ok {
			count++
			delete(set, v) // duplicates in b count once
		}
	}
	return count
}

func capAt(value, cap int) int {
	if value > cap {
		return cap
	}
	return value
}

func floorZero(value int) int {
	if value < 0 {
		return 0
	}
	return value
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
