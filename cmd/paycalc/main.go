// Command paycalc prices a pay period from the terminal and helps operate
// the server: pay period lookup, default holidays, rate files and tokens.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nightwatch/nursepay/auth"
	"github.com/nightwatch/nursepay/config"
	"github.com/nightwatch/nursepay/pay"
	"github.com/nightwatch/nursepay/shifts"
)

var rootCmd = &cobra.Command{
	Use:          "paycalc",
	Short:        "Night nurse pay calculator",
	Long:         "paycalc computes gross and net pay for one period of night shifts and helps administer the nursepay server.",
	SilenceUsage: true,
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate gross and net pay",
	Example: `  paycalc calc --rate 28 --regular 60 --weekend 16 --twins 24 --twins-weekend 8 --insurance --background-check
  paycalc calc --rate '$30.00' --holiday 8 --strict`,
	RunE: runCalc,
}

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Show the pay period containing a date",
	RunE:  runPeriod,
}

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List the default holidays for a year",
	RunE:  runHolidays,
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the rate file in effect as TOML",
	RunE:  runRates,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token (uses NURSEPAY_JWT_SECRET)",
	RunE:  runToken,
}

func init() {
	f := calcCmd.Flags()
	f.String("rate", "", "Base hourly rate")
	f.String("regular", "", "Regular hours")
	f.String("weekend", "", "Weekend hours")
	f.String("holiday", "", "Holiday hours")
	f.String("twins", "", "Twins hours")
	f.String("twins-weekend", "", "Twins weekend hours")
	f.Bool("insurance", false, "Withhold the insurance fee")
	f.Bool("background-check", false, "Withhold the background check fee")
	f.Bool("strict", false, "Reject invalid input instead of treating it as zero")
	f.String("convention", "", "Twins convention: separate or inclusive")
	f.String("rates", "", "TOML rate file")

	periodCmd.Flags().String("date", "", "Date (YYYY-MM-DD, default today)")
	periodCmd.Flags().String("frequency", string(shifts.FrequencyBiweekly), "weekly, biweekly, semimonthly or monthly")
	periodCmd.Flags().String("anchor", "2025-01-06", "First day of any period (weekly and biweekly)")

	holidaysCmd.Flags().Int("year", time.Now().Year(), "Year")

	ratesCmd.Flags().String("rates", "", "TOML rate file (default: built-in rates)")

	tokenCmd.Flags().String("role", string(auth.RoleAdmin), "admin, family or nurse")
	tokenCmd.Flags().String("subject", "", "Nurse or family ID")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(periodCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCalculator(ratesPath, convention string) (*pay.Calculator, error) {
	cfg := config.Config{RatesFile: ratesPath, TwinsConvention: convention}
	calc, err := cfg.Calculator()
	if err != nil {
		return nil, fmt.Errorf("loading rates: %w", err)
	}
	return calc, nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	text := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}
	insurance, _ := f.GetBool("insurance")
	background, _ := f.GetBool("background-check")
	strict, _ := f.GetBool("strict")

	calc, err := loadCalculator(text("rates"), text("convention"))
	if err != nil {
		return err
	}

	in := pay.ParseInput(pay.FormInput{
		BaseRate:            text("rate"),
		RegularHours:        text("regular"),
		WeekendHours:        text("weekend"),
		HolidayHours:        text("holiday"),
		TwinsHours:          text("twins"),
		TwinsWeekendHours:   text("twins-weekend"),
		InsurancePaid:       insurance,
		BackgroundCheckPaid: background,
	})

	var out pay.PayOutput
	if strict {
		if out, err = calc.CalculateStrict(in); err != nil {
			return err
		}
	} else {
		out = calc.Calculate(in)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Pay at %s/hour", pay.FormatMoney(in.BaseRate))))

	var b strings.Builder
	for _, line := range calc.Itemize(in) {
		if line.Hours.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "%-14s %7s h x %9s  %12s\n",
			line.Category.Label(), pay.FormatHours(line.Hours), pay.FormatMoney(line.Rate), pay.FormatMoney(line.Amount))
	}
	fmt.Fprintf(&b, "%-14s %32s\n", "Gross", pay.FormatMoney(out.GrossPay))
	for _, d := range calc.Deductions.Applicable(in.InsurancePaid, in.BackgroundCheckPaid) {
		fmt.Fprintf(&b, "%-14s %32s\n", d.Name, pay.FormatMoney(d.Amount.Neg()))
	}

	net := netStyle
	if out.NetPay.IsNegative() {
		net = negativeStyle
	}
	fmt.Fprintf(&b, "%-14s %32s", "Net", net.Render(pay.FormatMoney(out.NetPay)))
	fmt.Println(boxStyle.Render(b.String()))

	if out.NetPay.IsNegative() {
		fmt.Println(warningStyle.Render("Deductions exceed gross pay for this period."))
	}
	if in.BaseRate.LessThanOrEqual(decimal.Zero) && !strict {
		fmt.Println(warningStyle.Render("Base rate is zero; check --rate."))
	}
	return nil
}

func runPeriod(cmd *cobra.Command, args []string) error {
	dateStr, _ := cmd.Flags().GetString("date")
	freqStr, _ := cmd.Flags().GetString("frequency")
	anchorStr, _ := cmd.Flags().GetString("anchor")

	freq, err := shifts.ParseFrequency(freqStr)
	if err != nil {
		return err
	}
	anchor, err := shifts.ParseDate(anchorStr)
	if err != nil {
		return err
	}
	date := shifts.Today(time.Local)
	if dateStr != "" {
		if date, err = shifts.ParseDate(dateStr); err != nil {
			return err
		}
	}

	pc := shifts.PeriodConfig{Frequency: freq, Anchor: anchor}
	current := pc.PeriodFor(date)
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s pay period for %s", freq, date)))
	fmt.Printf("  Previous  %s\n", dimStyle.Render(pc.Previous(current).String()))
	fmt.Printf("  Current   %s  (%d days)\n", current, current.Len())
	fmt.Printf("  Next      %s\n", dimStyle.Render(pc.Next(current).String()))
	return nil
}

func runHolidays(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")

	fmt.Println(titleStyle.Render(fmt.Sprintf("Holidays %d", year)))
	for _, h := range shifts.DefaultHolidays(year) {
		fmt.Printf("  %s  %-3s  %s\n", h.Date, h.Date.Weekday().String()[:3], h.Name)
	}
	return nil
}

func runRates(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("rates")

	rf := config.DefaultRatesFile()
	if path != "" {
		var err error
		if rf, err = config.LoadRatesFile(path); err != nil {
			return err
		}
	}
	data, err := rf.Encode()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	roleStr, _ := cmd.Flags().GetString("role")
	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	secret := config.Load().JWTSecret
	if secret == "" {
		return fmt.Errorf("NURSEPAY_JWT_SECRET is not set")
	}
	role, err := auth.ParseRole(roleStr)
	if err != nil {
		return err
	}
	if role != auth.RoleAdmin && subject == "" {
		return fmt.Errorf("--subject is required for the %s role", role)
	}
	if subject == "" {
		subject = "admin"
	}

	token, err := auth.IssueToken(secret, role, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
