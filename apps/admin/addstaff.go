package main

import (
	"context"
	"fmt"

	"github.com/trezcool/internat/core/roster"
)

// addStaff registers a supervision staff user. Grade and cohort scope the
// "aed" role to its group and are rejected for admin roles.
func (cli *commandLine) addStaff(email, pwd, role, grade, cohort string) error {
	usr, err := cli.rosterSvc.CreateStaff(context.Background(), roster.NewStaff{
		Email:      email,
		Password:   pwd,
		Role:       role,
		GradeLevel: grade,
		Cohort:     cohort,
	})
	if err != nil {
		return err
	}
	fmt.Printf("staff user %s created (%s)\n", usr.Email, usr.ID)
	return nil
}
