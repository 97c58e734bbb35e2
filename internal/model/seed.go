package model

// InitialPeople 没有存档时使用的示例数据
func InitialPeople() []Person {
	return []Person{
		{
			ID:           "1",
			FirstName:    "Shadman",
			LastName:     "Sakib",
			Gender:       GenderMale,
			BirthDate:    "1945-05-12",
			Bio:          "The patriarch of the family. A master woodworker who built the family estate with his own hands.",
			PlaceOfBirth: "London, UK",
			Occupation:   "Carpenter",
			PhotoURL:     "https://picsum.photos/seed/thomas/200/200",
		},
		{
			ID:           "2",
			FirstName:    "Eleanor",
			LastName:     "Heritage",
			MaidenName:   "Smith",
			Gender:       GenderFemale,
			BirthDate:    "1948-08-21",
			Bio:          "Matriarch and historian. She kept the family records meticulously for over 50 years.",
			PlaceOfBirth: "York, UK",
			SpouseID:     "1",
			PhotoURL:     "https://picsum.photos/seed/eleanor/200/200",
		},
		{
			ID:           "3",
			FirstName:    "James",
			LastName:     "Heritage",
			Gender:       GenderMale,
			BirthDate:    "1972-11-03",
			FatherID:     "1",
			MotherID:     "2",
			Bio:          "Followed in Thomas footsteps but moved into architecture.",
			PlaceOfBirth: "London, UK",
			Occupation:   "Architect",
			PhotoURL:     "https://picsum.photos/seed/james/200/200",
		},
		{
			ID:           "4",
			FirstName:    "Sarah",
			LastName:     "Grant",
			MaidenName:   "Heritage",
			Gender:       GenderFemale,
			BirthDate:    "1975-02-15",
			FatherID:     "1",
			MotherID:     "2",
			Bio:          "A passionate gardener and botanist.",
			PlaceOfBirth: "London, UK",
			PhotoURL:     "https://picsum.photos/seed/sarah/200/200",
		},
		{
			ID:        "5",
			FirstName: "Alice",
			LastName:  "Heritage",
			Gender:    GenderFemale,
			BirthDate: "2005-06-30",
			FatherID:  "3",
			Bio:       "The youngest generation, currently studying history.",
			PhotoURL:  "https://picsum.photos/seed/alice/200/200",
		},
	}
}
