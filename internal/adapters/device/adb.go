package device

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const dumpPath = "/sdcard/window_dump.xml"

// Device is the subset of device automation the schedule reader needs.
type Device interface {
	Connect(ctx context.Context) error
	StopApp(ctx context.Context, pkg string) error
	StartApp(ctx context.Context, pkg string) error
	Dump(ctx context.Context) ([]Element, error)
	Tap(ctx context.Context, x, y int) error
}

// ADBDevice drives an Android device through the adb command line tool.
type ADBDevice struct {
	adbPath string
	serial  string
	log     logrus.FieldLogger
}

// NewADBDevice targets serial, or the only attached device when serial is empty.
func NewADBDevice(adbPath, serial string, log logrus.FieldLogger) *ADBDevice {
	if adbPath == "" {
		adbPath = "adb"
	}
	return &ADBDevice{adbPath: adbPath, serial: serial, log: log.WithField("component", "adb")}
}

func (d *ADBDevice) run(ctx context.Context, args ...string) (string, error) {
	full := make([]string, 0, len(args)+2)
	if d.serial != "" {
		full = append(full, "-s", d.serial)
	}
	full = append(full, args...)

	out, err := exec.CommandContext(ctx, d.adbPath, full...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (d *ADBDevice) shell(ctx context.Context, args ...string) (string, error) {
	return d.run(ctx, append([]string{"shell"}, args...)...)
}

func (d *ADBDevice) Connect(ctx context.Context) error {
	state, err := d.run(ctx, "get-state")
	if err != nil {
		return fmt.Errorf("connect device: %w", err)
	}
	if s := strings.TrimSpace(state); s != "device" {
		return fmt.Errorf("connect device: unexpected state %q", s)
	}
	d.log.WithField("serial", d.serial).Info("device connected")
	return nil
}

func (d *ADBDevice) StopApp(ctx context.Context, pkg string) error {
	if _, err := d.shell(ctx, "am", "force-stop", pkg); err != nil {
		return fmt.Errorf("stop app %s: %w", pkg, err)
	}
	return nil
}

func (d *ADBDevice) StartApp(ctx context.Context, pkg string) error {
	if _, err := d.shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1"); err != nil {
		return fmt.Errorf("start app %s: %w", pkg, err)
	}
	return nil
}

// Dump captures the current window hierarchy.
func (d *ADBDevice) Dump(ctx context.Context) ([]Element, error) {
	if _, err := d.shell(ctx, "uiautomator", "dump", dumpPath); err != nil {
		return nil, fmt.Errorf("dump hierarchy: %w", err)
	}

	xml, err := d.shell(ctx, "cat", dumpPath)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy: %w", err)
	}

	return ParseHierarchy(xml)
}

func (d *ADBDevice) Tap(ctx context.Context, x, y int) error {
	if _, err := d.shell(ctx, "input", "tap", strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return fmt.Errorf("tap %d,%d: %w", x, y, err)
	}
	return nil
}
