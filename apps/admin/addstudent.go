package main

import (
	"context"
	"fmt"

	"github.com/trezcool/internat/core/roster"
)

func (cli *commandLine) addStudent(surname, givenName, grade, cohort string) error {
	std, err := cli.rosterSvc.CreateStudent(context.Background(), roster.NewStudent{
		Surname:    surname,
		GivenName:  givenName,
		GradeLevel: roster.GradeLevel(grade),
		Cohort:     roster.Cohort(cohort),
	})
	if err != nil {
		return err
	}
	fmt.Printf("student %s created (%s)\n", std.DisplayName(), std.ID)
	return nil
}
