package services

import (
	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

func assignment(id, crewID, functionID int, start, end, displayName string) booking.Assignment {
	return booking.Assignment{
		ID:          id,
		Kind:        booking.KindCrew,
		SubjectID:   crewID,
		Start:       day(start),
		End:         day(end),
		Function:    reference.New(reference.ProjectFunctions, functionID),
		DisplayName: displayName,
	}
}

// plannedWorld is a small, consistent planning data set: two projects, four
// functions, three crew members with assignments in June 2024.
func plannedWorld() *fakeRepository {
	repo := newFakeRepository()

	repo.contacts[7] = booking.Contact{ID: 7, Name: "Acme AB"}
	repo.contacts[8] = booking.Contact{ID: 8, Name: "Globen"}

	repo.crew[1] = booking.CrewMember{ID: 1, Name: "Östen Berg", Active: true, Tags: []string{"Tekniker"}}
	repo.crew[2] = booking.CrewMember{ID: 2, Name: "Alva Lind", Active: true, Tags: []string{"Tekniker", "Ljus"}}
	repo.crew[3] = booking.CrewMember{ID: 3, Name: "Björn Ek", Active: false, Tags: []string{"Ljud"}}
	repo.crew[9] = booking.CrewMember{ID: 9, Name: "Maja Chef", Active: true}

	repo.projects[100] = booking.Project{
		ID:             100,
		Name:           "Summer Tour",
		Number:         "P-100",
		Color:          "#ff0000",
		Status:         "Confirmed",
		Customer:       reference.New(reference.Contacts, 7),
		Location:       reference.New(reference.Contacts, 8),
		AccountManager: reference.New(reference.Crew, 9),
		Start:          day("2024-06-01T00:00:00Z"),
		End:            day("2024-06-10T23:00:00Z"),
	}
	repo.projects[101] = booking.Project{
		ID:     101,
		Name:   "Gala",
		Status: "Concept",
		Start:  day("2024-06-05T00:00:00Z"),
		End:    day("2024-06-06T00:00:00Z"),
	}

	two := 2
	zero := 0
	repo.functions[10] = booking.Function{ID: 10, Name: "Rigger", Project: reference.New(reference.Projects, 100), Quantity: 1, CrewCount: &zero}
	repo.functions[11] = booking.Function{ID: 11, Name: "Light", Project: reference.New(reference.Projects, 101), Quantity: 1}
	repo.functions[12] = booking.Function{ID: 12, Name: "Sound", Project: reference.New(reference.Projects, 100), Quantity: 2,
		Start: day("2024-06-03T08:00:00Z"), End: day("2024-06-04T18:00:00Z")}
	repo.functions[13] = booking.Function{ID: 13, Name: "Stage", Project: reference.New(reference.Projects, 100), Quantity: 1, CrewCount: &two}

	repo.crewAssignments[1] = []booking.Assignment{
		assignment(500, 1, 10, "2024-06-02T08:00:00Z", "2024-06-02T12:00:00Z", ""),
		assignment(501, 1, 11, "2024-06-02T10:00:00Z", "2024-06-02T14:00:00Z", ""),
		assignment(509, 1, 10, "2024-08-01T08:00:00Z", "2024-08-01T12:00:00Z", ""),
	}
	repo.crewAssignments[2] = []booking.Assignment{
		assignment(502, 2, 10, "2024-06-03T08:00:00Z", "2024-06-03T16:00:00Z", ""),
		assignment(503, 2, 13, "2024-06-04T08:00:00Z", "2024-06-05T16:00:00Z", ""),
	}
	return repo
}

// naiveResolution looks every reference up directly, one assignment at a time.
func naiveResolution(repo *fakeRepository, assignments []booking.Assignment) Resolution {
	res := Resolution{Functions: map[int]booking.FunctionInfo{}, Projects: map[int]booking.ProjectInfo{}}
	for _, a := range assignments {
		fn, ok := repo.functions[a.Function.ID()]
		if !ok {
			continue
		}
		res.Functions[fn.ID] = booking.NewFunctionInfo(fn)
		p, ok := repo.projects[fn.Project.ID()]
		if !ok {
			continue
		}
		info := booking.NewProjectInfo(p)
		info.CustomerName = repo.contacts[info.CustomerID].Name
		info.LocationName = repo.contacts[info.LocationID].Name
		info.AccountManagerName = repo.crew[info.AccountManagerID].Name
		res.Projects[p.ID] = info
	}
	return res
}
