package games

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"runtime"
	"strconv"
	"strings"

	"launchpad/internal/utils"
)

// Process is one entry of the OS process list.
type Process struct {
	PID  int
	Name string
}

// ListProcesses returns the running processes.
func ListProcesses(ctx context.Context) ([]Process, error) {
	if runtime.GOOS == "windows" {
		out, err := utils.CommandContext(ctx, "tasklist", "/FO", "CSV", "/NH").Output()
		if err != nil {
			return nil, err
		}
		return parseTasklist(strings.NewReader(string(out)))
	}

	out, err := utils.CommandContext(ctx, "ps", "-eo", "pid=,comm=").Output()
	if err != nil {
		return nil, err
	}
	return parsePS(strings.NewReader(string(out)))
}

// parseTasklist reads `tasklist /FO CSV /NH` output:
// "Image Name","PID","Session Name","Session#","Mem Usage"
func parseTasklist(r io.Reader) ([]Process, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var procs []Process
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			continue
		}
		pid, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: rec[0]})
	}
	return procs, nil
}

// parsePS reads `ps -eo pid=,comm=` output.
func parsePS(r io.Reader) ([]Process, error) {
	var procs []Process
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		pidField, name, ok := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(pidField)
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: strings.TrimSpace(name)})
	}
	return procs, scanner.Err()
}
