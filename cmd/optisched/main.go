package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	shttp "optisched/internal/http"
	"optisched/internal/logging"
	"optisched/internal/render"
	"optisched/internal/scenario"
	"optisched/internal/scheduler"
	"optisched/internal/shell"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type Options struct {
	LogLevel  string `long:"log-level" description:"Log level" default:"warning" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	LogFormat string `long:"log-format" description:"Log format" default:"text" choice:"text" choice:"json"`
}

type ShellCommand struct {
	NoClear bool `long:"no-clear" description:"Do not clear the screen on start"`
}

type RunCommand struct {
	File string `short:"f" long:"file" description:"Scenario file in YAML" required:"true"`
}

type ServeCommand struct {
	Addr            string        `short:"a" long:"addr" description:"Address to listen on" default:"localhost:8080"`
	ShutdownTimeout time.Duration `long:"shutdown-timeout" description:"Time to wait for requests on shutdown" default:"30s"`
}

var (
	options      Options
	shellCommand ShellCommand
	runCommand   RunCommand
	serveCommand ServeCommand
)

func (c *ShellCommand) Execute(_ []string) error {
	return shell.New(os.Stdin, os.Stdout, !c.NoClear).Run()
}

func (c *RunCommand) Execute(_ []string) error {
	return c.run(os.Stdout)
}

func (c *RunCommand) run(out io.Writer) error {
	sc, err := scenario.Load(c.File)
	if err != nil {
		return fmt.Errorf("could not load scenario: %w", err)
	}
	if !sc.HasMeetings() && !sc.HasJobs() {
		log.WithFields(log.Fields{"file": c.File}).Warn("Scenario has neither meetings nor jobs")
		return nil
	}

	if sc.HasMeetings() {
		intervals, err := sc.Intervals()
		if err != nil {
			return fmt.Errorf("could not expand meetings: %w", err)
		}
		selected, err := scheduler.SelectIntervals(intervals)
		if err != nil {
			return fmt.Errorf("could not schedule meetings: %w", err)
		}
		log.WithFields(log.Fields{
			"meetings": len(intervals),
			"selected": len(selected),
		}).Info("Scheduled meetings")
		fmt.Fprintf(out, "All meetings: %v\n", intervals)
		render.Intervals(out, selected)
	}

	if sc.HasJobs() {
		if sc.HasMeetings() {
			fmt.Fprintln(out)
		}
		schedule, err := scheduler.ScheduleJobs(sc.JobList())
		if err != nil {
			return fmt.Errorf("could not schedule jobs: %w", err)
		}
		log.WithFields(log.Fields{
			"jobs":     len(sc.Jobs),
			"makespan": schedule.Makespan,
		}).Info("Scheduled jobs")
		if err = schedule.CheckFeasible(); err != nil {
			return fmt.Errorf("scheduled jobs are infeasible: %w", err)
		}
		render.JobShop(out, schedule)
	}
	return nil
}

func (c *ServeCommand) Execute(_ []string) error {
	server, err := shttp.NewScheduleServer(c.Addr)
	if err != nil {
		return fmt.Errorf("could not create schedule server: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": c.Addr}).Info("Serving schedule API")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		return fmt.Errorf("listen and serve error: %w", err)
	case <-sigs:
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if err = <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve error: %w", err)
	}
	return nil
}

func main() {
	parser := flags.NewParser(&options, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if err := logging.Configure(options.LogLevel, options.LogFormat, os.Stderr); err != nil {
			return err
		}
		if command == nil {
			command = &shellCommand
		}
		return command.Execute(args)
	}

	mustAddCommand(parser, "shell", "Interactive scheduling menu", "Prompt for meetings or factory jobs and print the schedule.", &shellCommand)
	mustAddCommand(parser, "run", "Run a scenario file", "Schedule the meetings and jobs listed in a YAML scenario file.", &runCommand)
	mustAddCommand(parser, "serve", "Serve the scheduling API", "Serve interval selection and job-shop scheduling over HTTP.", &serveCommand)

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			os.Exit(0)
		}
		log.Fatal(err)
	}
}

func mustAddCommand(parser *flags.Parser, name, short, long string, data interface{}) {
	if _, err := parser.AddCommand(name, short, long, data); err != nil {
		log.Fatal(fmt.Errorf("could not register command %s: %w", name, err))
	}
}
