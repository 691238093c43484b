package services

import (
	"testing"

	domain "github.com/kidsafisha/api/internal/domain"
)

func citySlugs(items []domain.CityListItem) []string {
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slugs = append(slugs, item.Slug)
	}
	return slugs
}

func assertSlugs(t *testing.T, got []domain.CityListItem, want ...string) {
	t.Helper()
	slugs := citySlugs(got)
	if len(slugs) != len(want) {
		t.Fatalf("expected %v, got %v", want, slugs)
	}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, slugs)
		}
	}
}

func TestCityOrdererPinsConfiguredCities(t *testing.T) {
	orderer := NewCityOrderer("moskva", "sankt-peterburg")
	input := []domain.CityListItem{
		{Slug: "kazan", Name: "Казань"},
		{Slug: "sankt-peterburg", Name: "Санкт-Петербург"},
		{Slug: "moskva", Name: "Москва"},
	}

	got := orderer.Order(input)
	assertSlugs(t, got, "moskva", "sankt-peterburg", "kazan")
	assertSlugs(t, input, "kazan", "sankt-peterburg", "moskva")
}

func TestCityOrdererCollatesNames(t *testing.T) {
	orderer := NewCityOrderer("moskva", "sankt-peterburg")
	got := orderer.Order([]domain.CityListItem{
		{Slug: "yaroslavl", Name: "Ярославль"},
		{Slug: "ekaterinburg", Name: "Екатеринбург"},
		{Slug: "orel", Name: "Орёл"},
		{Slug: "abakan", Name: "Абакан"},
		{Slug: "moskva", Name: "Москва"},
	})
	assertSlugs(t, got, "moskva", "abakan", "ekaterinburg", "orel", "yaroslavl")
}

func TestCityOrdererVisibilityTier(t *testing.T) {
	orderer := NewCityOrderer("moskva", "sankt-peterburg")
	public, hidden := true, false
	got := orderer.Order([]domain.CityListItem{
		{Slug: "abakan", Name: "Абакан", IsPublic: &hidden},
		{Slug: "sankt-peterburg", Name: "Санкт-Петербург", IsPublic: &hidden},
		{Slug: "tver", Name: "Тверь", IsPublic: &public},
		{Slug: "moskva", Name: "Москва", IsPublic: &hidden},
	})
	assertSlugs(t, got, "moskva", "sankt-peterburg", "tver", "abakan")
}

func TestCityOrdererTreatsMissingVisibilityAsPublic(t *testing.T) {
	orderer := NewCityOrderer("moskva", "sankt-peterburg")
	hidden := false
	got := orderer.Order([]domain.CityListItem{
		{Slug: "tver", Name: "Тверь"},
		{Slug: "abakan", Name: "Абакан", IsPublic: &hidden},
	})
	assertSlugs(t, got, "tver", "abakan")
}

func TestCityOrdererMixedVisibilityIsInputOrderIndependent(t *testing.T) {
	orderer := NewCityOrderer("moskva", "sankt-peterburg")
	public, hidden := true, false
	abakan := domain.CityListItem{Slug: "abakan", Name: "Абакан", IsPublic: &hidden}
	kazan := domain.CityListItem{Slug: "kazan", Name: "Казань"}
	tver := domain.CityListItem{Slug: "tver", Name: "Тверь", IsPublic: &public}

	permutations := [][]domain.CityListItem{
		{abakan, kazan, tver},
		{abakan, tver, kazan},
		{kazan, abakan, tver},
		{kazan, tver, abakan},
		{tver, abakan, kazan},
		{tver, kazan, abakan},
	}
	for _, input := range permutations {
		assertSlugs(t, orderer.Order(input), "kazan", "tver", "abakan")
	}
}

func TestCityOrdererIsStableForEqualNames(t *testing.T) {
	orderer := NewCityOrderer("moskva", "sankt-peterburg")
	got := orderer.Order([]domain.CityListItem{
		{ID: "2", Slug: "troitsk-moscow", Name: "Троицк"},
		{ID: "1", Slug: "troitsk-chelyabinsk", Name: "Троицк"},
	})
	assertSlugs(t, got, "troitsk-moscow", "troitsk-chelyabinsk")
}

func TestCityOrdererEmptyInput(t *testing.T) {
	if got := NewCityOrderer("", "").Order(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
