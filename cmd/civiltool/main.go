// Command civiltool inspects civil-time conversions: it formats and
// parses instants under a zone and shows how ambiguous civil times
// resolve across daylight-saving transitions.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ngrash/go-civil/civiltime"
	_ "github.com/ngrash/go-civil/tzposix" // register the POSIX TZ loader
)

var (
	zoneFlag   string
	formatFlag string
)

func loadZone() (civiltime.Zone, error) {
	return civiltime.LoadTimeZone(zoneFlag)
}

func main() {
	root := &cobra.Command{
		Use:           "civiltool",
		Short:         "inspect civil-time conversions under timezone rules",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&zoneFlag, "zone", "z", "UTC", `zone name: "UTC", "localtime", "UTC+hh:mm" or a POSIX TZ string`)
	root.PersistentFlags().StringVarP(&formatFlag, "format", "f", "%Y-%m-%d %H:%M:%S %Ez", "strftime-like format string")

	root.AddCommand(formatCmd(), parseCmd(), resolveCmd(), breakdownCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func formatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <unix-seconds>",
		Short: "format an instant as civil time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad unix seconds %q: %w", args[0], err)
			}
			tz, err := loadZone()
			if err != nil {
				return err
			}
			fmt.Println(civiltime.Format(formatFlag, civiltime.Unix(sec, 0), tz))
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <input>",
		Short: "parse civil time text to an instant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tz, err := loadZone()
			if err != nil {
				return err
			}
			t, err := civiltime.Parse(formatFlag, args[0], tz)
			if err != nil {
				return err
			}
			fmt.Println(t.UnixSeconds())
			fmt.Println(civiltime.Format("%Y-%m-%d %H:%M:%E*S %Ez", t, tz))
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <year> <month> <day> <hour> <minute> <second>",
		Short: "resolve civil fields, showing skipped and repeated times",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n [6]int64
			for i, a := range args {
				v, err := strconv.ParseInt(a, 10, 64)
				if err != nil {
					return fmt.Errorf("bad field %q: %w", a, err)
				}
				n[i] = v
			}
			tz, err := loadZone()
			if err != nil {
				return err
			}
			ti := civiltime.MakeTimeInfo(n[0], int(n[1]), int(n[2]), int(n[3]), int(n[4]), int(n[5]), tz)
			fmt.Println("kind       =", ti.Kind)
			fmt.Println("normalized =", ti.Normalized)
			fmt.Println("pre        =", civiltime.Format(formatFlag, ti.Pre, tz))
			fmt.Println("trans      =", civiltime.Format(formatFlag, ti.Trans, tz))
			fmt.Println("post       =", civiltime.Format(formatFlag, ti.Post, tz))
			return nil
		},
	}
}

func breakdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "breakdown <unix-seconds>",
		Short: "show the civil components of an instant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad unix seconds %q: %w", args[0], err)
			}
			tz, err := loadZone()
			if err != nil {
				return err
			}
			bd := civiltime.BreakTime(civiltime.Unix(sec, 0), tz)
			fmt.Printf("date    = %04d-%02d-%02d (day %d, weekday %d)\n", bd.Year, bd.Month, bd.Day, bd.YearDay, bd.Weekday)
			fmt.Printf("time    = %02d:%02d:%02d\n", bd.Hour, bd.Minute, bd.Second)
			fmt.Printf("offset  = %+d seconds east\n", bd.Offset)
			fmt.Printf("dst     = %v\n", bd.IsDST)
			fmt.Printf("abbr    = %s\n", bd.Abbr)
			return nil
		},
	}
}
