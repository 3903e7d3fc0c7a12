package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tstellanova/rv3028c7-rtc/rv3028"
)

func main() {
	err := runMain()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var version = "<not set>"

type ReadCmd struct{}

type WriteCmd struct{}

type AlarmCmd struct {
	Hour   int  `arg:"--hour" help:"hour to match (0-23)"`
	Minute int  `arg:"--minute" help:"minute to match (0-59)"`
	Wait   bool `arg:"--wait" help:"poll until the alarm fires"`
}

type CountdownCmd struct {
	Duration time.Duration `arg:"--duration" help:"countdown duration, e.g. 3s or 90m"`
	Repeat   bool          `arg:"--repeat" help:"periodic instead of one-shot"`
	Wait     bool          `arg:"--wait" help:"poll until the countdown expires"`
}

type EventLogCmd struct {
	Backup    bool `arg:"--backup" help:"log backup switchovers instead of EVI edges"`
	Overwrite bool `arg:"--overwrite" help:"keep the most recent event instead of the first"`
	Reset     bool `arg:"--reset" help:"reset the log instead of reading it"`
}

type TrickleCmd struct {
	Disable bool `arg:"--disable" help:"disable trickle charging"`
	Ohms    int  `arg:"--ohms" help:"current limiter resistance: 3000, 5000, 9000 or 15000"`
}

type DriftCmd struct {
	Broker   string        `arg:"--broker,required" help:"MQTT broker, e.g. tcp://localhost:1883"`
	Topic    string        `arg:"--topic" help:"MQTT topic for drift samples"`
	Interval time.Duration `arg:"--interval" help:"sampling interval"`
}

type Args struct {
	Read      *ReadCmd      `arg:"subcommand:read" help:"print RTC time"`
	Write     *WriteCmd     `arg:"subcommand:write" help:"set RTC from system time"`
	Alarm     *AlarmCmd     `arg:"subcommand:alarm" help:"configure the daily alarm"`
	Countdown *CountdownCmd `arg:"subcommand:countdown" help:"run the periodic countdown timer"`
	EventLog  *EventLogCmd  `arg:"subcommand:eventlog" help:"configure or read the event timestamp log"`
	Trickle   *TrickleCmd   `arg:"subcommand:trickle" help:"configure backup trickle charging"`
	Drift     *DriftCmd     `arg:"subcommand:drift" help:"publish RTC-vs-system drift over MQTT"`

	Bus     string `arg:"--bus" help:"i2c bus name, empty for the first available"`
	MuxAddr int    `arg:"--mux-addr" help:"i2c address of a channel mux, 0 for none"`
	MuxChan int    `arg:"--mux-chan" help:"mux channel bitmask for the RTC"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	args := Args{}
	p := arg.MustParse(&args)
	if args.Read == nil && args.Write == nil && args.Alarm == nil &&
		args.Countdown == nil && args.EventLog == nil && args.Trickle == nil &&
		args.Drift == nil {
		p.Fail("no command given")
	}
	return args
}

func runMain() error {
	args := procArgs()
	log.SetFlags(0)

	bus, err := openBus(args.Bus)
	if err != nil {
		return err
	}
	defer bus.Close()

	var rtc *rv3028.Device
	if args.MuxAddr != 0 {
		rtc = rv3028.NewWithMux(bus, uint16(args.MuxAddr), uint8(args.MuxChan))
	} else {
		rtc = rv3028.New(bus)
	}

	switch {
	case args.Read != nil:
		return readTime(rtc)
	case args.Write != nil:
		return writeTime(rtc)
	case args.Alarm != nil:
		return runAlarm(rtc, args.Alarm)
	case args.Countdown != nil:
		return runCountdown(rtc, args.Countdown)
	case args.EventLog != nil:
		return runEventLog(rtc, args.EventLog)
	case args.Trickle != nil:
		return runTrickle(rtc, args.Trickle)
	case args.Drift != nil:
		return runDrift(rtc, args.Drift)
	default:
		return errors.New("no command given")
	}
}

func readTime(rtc *rv3028.Device) error {
	unix, err := rtc.UnixTimeBlocking(10)
	if err != nil {
		return err
	}
	now, err := rtc.Now()
	if err != nil {
		return err
	}
	log.Printf("rtc time: %s (unix %d)", now.Format(time.RFC3339), unix)
	return nil
}

func writeTime(rtc *rv3028.Device) error {
	now := time.Now().UTC()
	if err := rtc.SetTime(now); err != nil {
		return err
	}
	log.Printf("rtc set to %s", now.Format(time.RFC3339))
	return nil
}

func runAlarm(rtc *rv3028.Device, cmd *AlarmCmd) error {
	at := time.Date(2000, time.January, 1, cmd.Hour, cmd.Minute, 0, 0, time.UTC)
	// match hour and minute only: fires once a day at the given time
	if err := rtc.SetAlarm(at, nil, false, true, true); err != nil {
		return err
	}
	log.Printf("alarm set for %02d:%02d", cmd.Hour, cmd.Minute)
	if !cmd.Wait {
		return nil
	}
	for {
		fired, err := rtc.CheckAndClearAlarm()
		if err != nil {
			return err
		}
		if fired {
			log.Println("alarm fired")
			return nil
		}
		time.Sleep(time.Second)
	}
}

func runCountdown(rtc *rv3028.Device, cmd *CountdownCmd) error {
	actual, err := rtc.ConfigureCountdown(cmd.Duration, cmd.Repeat, true)
	if err != nil {
		return err
	}
	log.Printf("countdown armed: requested %s, achievable %s", cmd.Duration, actual)
	if !cmd.Wait {
		return nil
	}
	for {
		expired, err := rtc.CheckAndClearCountdown()
		if err != nil {
			return err
		}
		if expired {
			log.Println("countdown expired")
			if !cmd.Repeat {
				return nil
			}
		}
		remaining, err := rtc.CountdownValue()
		if err != nil {
			return err
		}
		log.Printf("%d ticks remaining", remaining)
		time.Sleep(100 * time.Millisecond)
	}
}

func runEventLog(rtc *rv3028.Device, cmd *EventLogCmd) error {
	if cmd.Reset {
		return rtc.ResetTimestampLog()
	}
	count, stamp, err := rtc.EventCountAndTime()
	if err != nil {
		return err
	}
	if count == 0 {
		log.Println("no events captured, (re)configuring log")
		source := rv3028.EventSourceEVI
		if cmd.Backup {
			source = rv3028.EventSourceBackup
		}
		return rtc.ConfigureTimestampLogging(source, cmd.Overwrite, true)
	}
	log.Printf("%d events, captured timestamp %s", count, stamp.Format(time.RFC3339))
	return nil
}

func runTrickle(rtc *rv3028.Device, cmd *TrickleCmd) error {
	var limit rv3028.TrickleChargeCurrentLimiter
	switch cmd.Ohms {
	case 0, 3000:
		limit = rv3028.Ohms3k
	case 5000:
		limit = rv3028.Ohms5k
	case 9000:
		limit = rv3028.Ohms9k
	case 15000:
		limit = rv3028.Ohms15k
	default:
		return fmt.Errorf("unsupported current limiter resistance %d", cmd.Ohms)
	}
	enabled, err := rtc.ToggleTrickleCharge(!cmd.Disable, limit)
	if err != nil {
		return err
	}
	log.Printf("trickle charging enabled: %v", enabled)
	return nil
}

// runDrift samples the difference between the RTC's Unix counter and the
// host clock and publishes each sample over MQTT, for long-running drift
// characterization of one or more clocks.
func runDrift(rtc *rv3028.Device, cmd *DriftCmd) error {
	topic := cmd.Topic
	if topic == "" {
		topic = "rv3028/drift"
	}
	interval := cmd.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	opts := mqtt.NewClientOptions().AddBroker(cmd.Broker).SetClientID("rv3028-drift")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	for {
		rtcUnix, err := rtc.UnixTimeBlocking(10)
		if err != nil {
			return err
		}
		sysUnix := time.Now().Unix()
		drift := int64(rtcUnix) - sysUnix

		payload := fmt.Sprintf(`{"sys":%d,"rtc":%d,"drift_s":%d}`, sysUnix, rtcUnix, drift)
		if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		log.Printf("sys %d rtc %d drift %ds", sysUnix, rtcUnix, drift)
		time.Sleep(interval)
	}
}
