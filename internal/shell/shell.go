package shell

import (
	"bufio"
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"io"
	"optisched/internal/model"
	"optisched/internal/render"
	"optisched/internal/scheduler"
	"strconv"
	"strings"
)

const (
	clearSequence = "\033[H\033[2J"
	doneToken     = "done"
)

var errEndOfInput = errors.New("end of input")

// Shell is the interactive menu. Bad input lines are reported and asked for
// again; they never end the session.
type Shell struct {
	scanner     *bufio.Scanner
	out         io.Writer
	clearScreen bool
}

func New(in io.Reader, out io.Writer, clearScreen bool) *Shell {
	return &Shell{bufio.NewScanner(in), out, clearScreen}
}

// Run shows the menu until the user exits or the input ends.
func (sh *Shell) Run() error {
	if sh.clearScreen {
		fmt.Fprint(sh.out, clearSequence)
	}
	sh.printHeader()

	for {
		sh.printMenu()
		choice, err := sh.prompt("Enter 1, 2, or 3: ")
		if err != nil {
			return sh.finish(err)
		}

		switch choice {
		case "1":
			err = sh.runIntervalScheduler()
		case "2":
			err = sh.runJobShopScheduler()
		case "3":
			fmt.Fprint(sh.out, "\nThank you for using OptiSched! See you next time.\n")
			return nil
		default:
			fmt.Fprint(sh.out, "\nInvalid choice. Please enter 1, 2, or 3.\n\n")
		}
		if err != nil {
			return sh.finish(err)
		}

		if _, err = sh.prompt("Press Enter to return to the main menu..."); err != nil {
			return sh.finish(err)
		}
	}
}

func (sh *Shell) finish(err error) error {
	if errors.Is(err, errEndOfInput) {
		fmt.Fprintln(sh.out)
		return nil
	}
	return err
}

func (sh *Shell) printHeader() {
	rule := strings.Repeat("=", 44)
	fmt.Fprintln(sh.out, rule)
	fmt.Fprintln(sh.out, "      OPTISCHED: Smart Scheduling Assistant")
	fmt.Fprintln(sh.out, rule)
	fmt.Fprintln(sh.out)
}

func (sh *Shell) printMenu() {
	fmt.Fprintln(sh.out, "What would you like to schedule?")
	fmt.Fprintln(sh.out, "1. Meeting Rooms (Maximize non-overlapping meetings)")
	fmt.Fprintln(sh.out, "2. Factory Jobs (Job Shop Scheduling)")
	fmt.Fprintln(sh.out, "3. Exit")
	fmt.Fprintln(sh.out)
}

func (sh *Shell) prompt(text string) (string, error) {
	fmt.Fprint(sh.out, text)
	if !sh.scanner.Scan() {
		if err := sh.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed reading input: %w", err)
		}
		return "", errEndOfInput
	}
	return strings.TrimSpace(sh.scanner.Text()), nil
}

func (sh *Shell) runIntervalScheduler() error {
	fmt.Fprint(sh.out, "\nMeeting Room Scheduler\n")
	fmt.Fprint(sh.out, "Enter meetings as 'start end' (e.g., 9 11). Type 'done' when finished.\n\n")

	intervals := make([]model.Interval, 0)
	for {
		line, err := sh.prompt("Meeting (start end) or 'done': ")
		if err != nil {
			return err
		}
		if strings.EqualFold(line, doneToken) {
			break
		}
		values, ok := parseInts(line, 2)
		if !ok {
			fmt.Fprintln(sh.out, "Invalid format. Use two numbers like: 1 3")
			continue
		}
		interval := model.Interval{Start: values[0], End: values[1]}
		if err := model.ValidateInterval(len(intervals), interval); err != nil {
			fmt.Fprintln(sh.out, "Start must be less than end. Try again.")
			continue
		}
		intervals = append(intervals, interval)
	}

	if len(intervals) == 0 {
		fmt.Fprintln(sh.out, "No meetings entered.")
		return nil
	}

	selected, err := scheduler.SelectIntervals(intervals)
	if err != nil {
		return fmt.Errorf("failed scheduling meetings: %w", err)
	}
	log.WithFields(log.Fields{
		"meetings": len(intervals),
		"selected": len(selected),
	}).Debug("Scheduled meetings")

	fmt.Fprintln(sh.out)
	render.Intervals(sh.out, selected)
	fmt.Fprint(sh.out, "\nTip: this schedule maximizes the number of meetings in one room.\n\n")
	return nil
}

func (sh *Shell) runJobShopScheduler() error {
	fmt.Fprint(sh.out, "\nJob Shop Scheduler\n")
	fmt.Fprintln(sh.out, "Schedule jobs across machines to minimize total time.")
	fmt.Fprint(sh.out, "Each job has steps: (machine_id, duration)\n\n")

	line, err := sh.prompt("How many jobs? ")
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(line)
	if err != nil || count < 0 {
		fmt.Fprintln(sh.out, "Invalid number. Try again.")
		return nil
	}

	jobs := make([]model.Job, 0, count)
	for number := 1; number <= count; number++ {
		job, err := sh.readJob(number, len(jobs))
		if err != nil {
			return err
		}
		if len(job) > 0 {
			jobs = append(jobs, job)
		}
	}

	if len(jobs) == 0 {
		fmt.Fprintln(sh.out, "No jobs defined.")
		return nil
	}

	schedule, err := scheduler.ScheduleJobs(jobs)
	if err != nil {
		return fmt.Errorf("failed scheduling jobs: %w", err)
	}
	if err = schedule.CheckFeasible(); err != nil {
		return fmt.Errorf("scheduled jobs are infeasible: %w", err)
	}
	log.WithFields(log.Fields{
		"jobs":     len(jobs),
		"machines": len(schedule.Machines),
		"makespan": schedule.Makespan,
	}).Debug("Scheduled jobs")

	fmt.Fprintln(sh.out)
	render.JobShop(sh.out, schedule)
	fmt.Fprint(sh.out, "\nTip: this schedule keeps machines busy with a greedy heuristic.\n\n")
	return nil
}

func (sh *Shell) readJob(number int, id int) (model.Job, error) {
	fmt.Fprintf(sh.out, "\nJob %d:\n", number)
	fmt.Fprintln(sh.out, "Enter steps as 'machine duration' (e.g., 0 3). Type 'done' when finished.")

	job := make(model.Job, 0)
	for {
		line, err := sh.prompt(fmt.Sprintf("  Step for Job %d: ", number))
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(line, doneToken) {
			return job, nil
		}
		values, ok := parseInts(line, 2)
		if !ok {
			fmt.Fprintln(sh.out, "Format: 'machine_id duration' (e.g., 1 5)")
			continue
		}
		req := model.OperationRequest{Machine: model.MachineId(values[0]), Duration: values[1]}
		if err := model.ValidateOperation(model.JobId(id), len(job), req); err != nil {
			var inputErr *model.InputError
			if errors.As(err, &inputErr) {
				fmt.Fprintf(sh.out, "Warning: %s.\n", inputErr.Reason)
			}
			continue
		}
		job = append(job, req)
	}
}

// parseInts splits line on whitespace and expects exactly n integers.
func parseInts(line string, n int) ([]int, bool) {
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, false
	}
	values := make([]int, 0, n)
	for _, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return nil, false
		}
		values = append(values, value)
	}
	return values, true
}
