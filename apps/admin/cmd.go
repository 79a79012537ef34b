package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/recap"
	"github.com/trezcool/internat/core/roster"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	rosterSvc *roster.Service
	attSvc    *attendance.Service
	recapSvc  *recap.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addstaff -email EMAIL -role ROLE [-grade GRADE -cohort COHORT] - register a staff user")
	fmt.Println("  addstudent -surname SURNAME -givenname GIVENNAME -grade GRADE -cohort COHORT - register a student")
	fmt.Println("  genrecap [-day YYYY-MM-DD] - generate the nightly recap (yesterday by default)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStaffCmd := flag.NewFlagSet("addstaff", flag.ExitOnError)
	addStaffEmail := addStaffCmd.String("email", "", "The staff user's email. The password will be prompted next.")
	addStaffRole := addStaffCmd.String("role", "", "One of: aed, cpe, manager, superadmin.")
	addStaffGrade := addStaffCmd.String("grade", "", "Supervised grade level; aed role only.")
	addStaffCohort := addStaffCmd.String("cohort", "", "Supervised cohort (F or M); aed role only.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentSurname := addStudentCmd.String("surname", "", "The student's surname.")
	addStudentGivenName := addStudentCmd.String("givenname", "", "The student's given name.")
	addStudentGrade := addStudentCmd.String("grade", "", "The student's grade level.")
	addStudentCohort := addStudentCmd.String("cohort", "", "The student's cohort (F or M).")

	genRecapCmd := flag.NewFlagSet("genrecap", flag.ExitOnError)
	genRecapDay := genRecapCmd.String("day", "", "The day to recap as YYYY-MM-DD. Defaults to yesterday.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstaff":
		if err := addStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStaffEmail == "" || *addStaffRole == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addStaffCmd.Usage()
			return errHelp
		}
		return cli.addStaff(*addStaffEmail, string(pwd), *addStaffRole, *addStaffGrade, *addStaffCohort)
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentSurname == "" || *addStudentGivenName == "" || *addStudentGrade == "" || *addStudentCohort == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentSurname, *addStudentGivenName, *addStudentGrade, *addStudentCohort)
	case "genrecap":
		if err := genRecapCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.generateRecap(*genRecapDay)
	default:
		cli.printUsage()
		return errHelp
	}
}
