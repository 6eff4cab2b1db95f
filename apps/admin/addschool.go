package main

import (
	"context"
	"fmt"

	"github.com/GausMx/Scoolynk-app-sub000/core/school"
)

func (cli *commandLine) addSchool(ns school.NewSchool) error {
	sch, err := cli.schoolSvc.Create(context.Background(), ns)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "school %q created with ID %s\n", sch.Name, sch.ID)
	return nil
}

func (cli *commandLine) listSchools() error {
	schools, err := cli.schoolSvc.Query(context.Background())
	if err != nil {
		return err
	}
	for _, sch := range schools {
		fmt.Fprintf(cli.out, "%s\t%s\n", sch.ID, sch.Name)
	}
	return nil
}
