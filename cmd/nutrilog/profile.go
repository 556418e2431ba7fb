package nutrilog

import (
	"fmt"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your body profile and calorie target",
}

var (
	profileJSON          bool
	profileGender        string
	profileBirthDate     string
	profileHeight        float64
	profileWeight        float64
	profileBodyFat       float64
	profileTargetWeight  float64
	profileTargetBodyFat float64
	profileTargetDate    string
	profileActivity      string
	profileGoal          string
)

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			p, err := l.GetOrCreateProfile()
			if err != nil {
				return err
			}
			if profileJSON {
				return printJSON(cmd, p)
			}
			printProfile(cmd, p)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields and recompute the calorie target",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			current, err := l.GetOrCreateProfile()
			if err != nil {
				return err
			}
			in := service.InputFromProfile(*current)
			flags := cmd.Flags()
			if flags.Changed("gender") {
				in.Gender = model.Gender(profileGender)
			}
			if flags.Changed("birth-date") {
				in.BirthDate = profileBirthDate
			}
			if flags.Changed("height") {
				in.HeightCm = profileHeight
			}
			if flags.Changed("weight") {
				in.WeightKg = profileWeight
			}
			if flags.Changed("body-fat") {
				in.BodyFatPct = &profileBodyFat
			}
			if flags.Changed("target-weight") {
				in.TargetWeightKg = &profileTargetWeight
			}
			if flags.Changed("target-body-fat") {
				in.TargetBodyFatPct = &profileTargetBodyFat
			}
			if flags.Changed("target-date") {
				in.TargetDate = profileTargetDate
			}
			if flags.Changed("activity-level") {
				in.ActivityLevel = model.ActivityLevel(profileActivity)
			}
			if flags.Changed("goal") {
				in.Goal = model.Goal(profileGoal)
			}
			p, err := l.UpsertProfile(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile; daily target %d kcal\n", p.DailyCalorieTarget)
			return nil
		})
	},
}

func printProfile(cmd *cobra.Command, p *model.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Gender: %s\n", p.Gender)
	fmt.Fprintf(out, "Birth date: %s\n", p.BirthDate)
	fmt.Fprintf(out, "Height: %.1f cm\n", p.HeightCm)
	fmt.Fprintf(out, "Weight: %.1f kg\n", p.WeightKg)
	if p.BodyFatPct != nil {
		fmt.Fprintf(out, "Body fat: %.1f%%\n", *p.BodyFatPct)
	}
	fmt.Fprintf(out, "Activity level: %s\n", p.ActivityLevel)
	fmt.Fprintf(out, "Goal: %s\n", p.Goal)
	if p.TargetWeightKg != nil {
		fmt.Fprintf(out, "Target weight: %.1f kg\n", *p.TargetWeightKg)
	}
	if p.TargetDate != "" {
		pc := service.NewProfileContext(*p, time.Now())
		fmt.Fprintf(out, "Target date: %s (%d days, urgency %s)\n", p.TargetDate, pc.DaysToTarget, pc.Urgency)
	}
	fmt.Fprintf(out, "Daily calorie target: %d kcal\n", p.DailyCalorieTarget)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)

	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output JSON")

	profileSetCmd.Flags().StringVar(&profileGender, "gender", "", "male or female")
	profileSetCmd.Flags().StringVar(&profileBirthDate, "birth-date", "", "Birth date YYYY-MM-DD")
	floatFlag(profileSetCmd, &profileHeight, "height", 0, "Height in cm")
	floatFlag(profileSetCmd, &profileWeight, "weight", 0, "Weight in kg")
	floatFlag(profileSetCmd, &profileBodyFat, "body-fat", 0, "Body fat percent")
	floatFlag(profileSetCmd, &profileTargetWeight, "target-weight", 0, "Target weight in kg")
	floatFlag(profileSetCmd, &profileTargetBodyFat, "target-body-fat", 0, "Target body fat percent")
	profileSetCmd.Flags().StringVar(&profileTargetDate, "target-date", "", "Target date YYYY-MM-DD")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity-level", "", "sedentary|lightly_active|moderately_active|very_active|extra_active")
	profileSetCmd.Flags().StringVar(&profileGoal, "goal", "", "lose_weight|maintain|gain_weight|recomp|blood_sugar")
}
