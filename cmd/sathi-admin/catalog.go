package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codesathi/internal/lessons"
	"codesathi/internal/models"
	"codesathi/internal/recommend"
	"codesathi/internal/validation"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the lesson catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := lessons.Default()
		list := catalog.All()
		if raw, _ := cmd.Flags().GetString("track"); raw != "" {
			track := models.Track(strings.ToUpper(raw))
			if !track.Valid() {
				return fmt.Errorf("unknown track %q", raw)
			}
			list = catalog.ByTrack(track)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTRACK\tDIFFICULTY\tXP\tCARDS\tCHALLENGE\tTITLE")
		for _, l := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\t%s\n",
				l.ID, l.Track, l.Difficulty, l.XPReward, len(l.TheoryCards), l.Challenge != nil, l.Title)
		}
		return tw.Flush()
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show the track recommended for a questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetString("age")
		goals, _ := cmd.Flags().GetStringSlice("goals")
		experience, _ := cmd.Flags().GetString("experience")
		style, _ := cmd.Flags().GetString("style")

		p := models.Profile{
			Name:          "Learner",
			LearnerType:   models.LearnerMyself,
			AgeGroup:      age,
			Goals:         goals,
			Experience:    experience,
			LearningStyle: style,
			Devices:       []string{"laptop"},
			TimePerDay:    30,
		}
		if err := validation.ValidateProfile(p); err != nil {
			return err
		}

		track := recommend.Track(p)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n", track, track.Label(), recommend.Reason(track))
		return nil
	},
}

func init() {
	lessonsCmd.Flags().String("track", "", "Only list one track (SCRATCH, PYTHON, JAVASCRIPT)")

	recommendCmd.Flags().String("age", models.Age10to12, "Age band: 7-9, 10-12, 13-14")
	recommendCmd.Flags().StringSlice("goals", []string{models.GoalGames}, "Goals, comma separated")
	recommendCmd.Flags().String("experience", models.ExperienceNone, "Experience: none, scratch, code")
	recommendCmd.Flags().String("style", models.StyleStep, "Learning style: visual, challenges, step")
}
