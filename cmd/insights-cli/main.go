package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	insights "github.com/goliatone/go-workforce-insights"
	"github.com/goliatone/go-workforce-insights/internal/config"
	"github.com/goliatone/go-workforce-insights/internal/prompt"
	"github.com/goliatone/go-workforce-insights/pkg/client"
	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/form"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

const (
	formAttrition    = "attrition"
	formProductivity = "productivity"
)

func main() {
	var (
		formFlag = flag.String("form", formAttrition, "Form to fill (attrition, productivity)")
		waitFlag = flag.Duration("wait", 45*time.Second, "Maximum time to wait for a prediction")
		onceFlag = flag.Bool("once", false, "Submit a single prediction and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-form name] [-wait d] [-once] [-- server flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *formFlag != formAttrition && *formFlag != formProductivity {
		log.Fatalf("unknown form %q (available: %s, %s)", *formFlag, formAttrition, formProductivity)
	}

	// Arguments after -- are server flags (-service1, -timeout, ...).
	cfg, err := config.Resolve(os.Args[0], flag.Args(), nil)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	contracts, err := insights.LoadContracts(ctx, cfg.ContractOptions()...)
	if err != nil {
		log.Fatalf("contracts: %v", err)
	}
	forms, err := insights.BuildForms(contracts)
	if err != nil {
		log.Fatalf("forms: %v", err)
	}

	predictor := client.New(cfg.ClientOptions()...)
	dash := insights.NewFactory(predictor, cfg.DashboardOptions(contracts)...)()
	defer dash.Close()

	dash.Mount(ctx)
	if err := waitIdle(ctx, dash, *waitFlag); err != nil {
		log.Printf("health checks: %v", err)
	}
	fmt.Println(prompt.Health(dash.Snapshot()))

	driver := prompt.NewSurveyDriver(os.Stdout)
	for {
		if err := run(ctx, driver, dash, forms, *formFlag, *waitFlag); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return
			}
			log.Fatalf("%v", err)
		}
		if *onceFlag {
			return
		}
		again, err := driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Run another prediction?", Default: true})
		if err != nil || !again {
			return
		}
	}
}

func run(ctx context.Context, driver prompt.Driver, dash *dashboard.Dashboard, forms view.Forms, name string, wait time.Duration) error {
	snap := dash.Snapshot()

	var (
		model   form.FormModel
		current map[string]any
		apply   prompt.ApplyFunc
		submit  func(context.Context) error
	)
	switch name {
	case formProductivity:
		model, current = forms.Productivity, snap.Productivity.Data.Values()
		apply, submit = dash.UpdateProductivityField, dash.SubmitProductivity
	default:
		model, current = forms.Attrition, snap.Attrition.Data.Values()
		apply, submit = dash.UpdateEmployeeField, dash.SubmitAttrition
	}

	if err := prompt.Fill(ctx, driver, model, current, apply); err != nil {
		return err
	}

	if err := submit(ctx); err != nil {
		if _, ok := dashboard.AsValidationError(err); !ok {
			return err
		}
	} else if err := waitIdle(ctx, dash, wait); err != nil {
		return fmt.Errorf("prediction: %w", err)
	}

	snap = dash.Snapshot()
	if name == formProductivity {
		fmt.Println(prompt.Productivity(snap.Productivity, forms.Productivity))
	} else {
		fmt.Println(prompt.Attrition(snap.Attrition, forms.Attrition))
	}
	return nil
}

func waitIdle(ctx context.Context, dash *dashboard.Dashboard, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return dash.Wait(waitCtx)
}
