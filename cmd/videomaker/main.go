package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/keagan/videomaker/internal/config"
	"github.com/keagan/videomaker/internal/ffmpeg"
	"github.com/keagan/videomaker/internal/gui"
	"github.com/keagan/videomaker/internal/logging"
	"github.com/keagan/videomaker/internal/overlays"
	"github.com/keagan/videomaker/internal/pipeline"
	"github.com/keagan/videomaker/internal/timeline"
	"github.com/keagan/videomaker/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
	edits   editFlags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "videomaker",
	Short: "videomaker - cut, reorder, retime and watermark a video",
	Long:  "Edit a video as a sequence of segments with full undo history, then render it with ffmpeg.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./videomaker.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	edits.register(renderCmd)
	edits.register(planCmd)
	planCmd.Flags().Duration("duration", 0, "plan against this source duration instead of probing")

	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	listCmd.AddCommand(listAnchorsCmd, listSpeedsCmd, listOverlaysCmd)

	rootCmd.AddCommand(renderCmd, planCmd, probeCmd, guiCmd, configCmd, listCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [input video] [output video]",
	Short: "Apply edits to a video and render the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.FromContext(ctx)

		pipe, err := pipeline.New(log.Logger, cfg, pipeline.WithProgress(func(p *ffmpeg.Progress) {
			log.Debug().Int("frame", p.Frame).Str("time", p.Time).Str("speed", p.Speed).Msg("progress")
		}))
		if err != nil {
			return err
		}

		session, err := pipe.Open(ctx, args[0])
		if err != nil {
			return err
		}
		if err := applyEdits(session); err != nil {
			return err
		}

		result, err := session.Render(ctx, args[1])
		if err != nil {
			return err
		}

		log.Info().
			Str("output", args[1]).
			Int("segments", session.Model().Len()).
			Str("duration", util.FormatDuration(session.Snapshot().Duration())).
			Dur("elapsed", result.Elapsed.Round(time.Millisecond)).
			Msg("render complete")
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan [input video] [output video]",
	Short: "Print the ffmpeg steps a render would run",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.FromContext(ctx)

		duration, err := planDuration(cmd)
		if err != nil {
			return err
		}

		var session *pipeline.Session
		if duration > 0 {
			opts, err := pipeline.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			session, err = pipeline.NewSession(log.Logger, args[0], duration, opts)
			if err != nil {
				return err
			}
		} else {
			pipe, err := pipeline.New(log.Logger, cfg)
			if err != nil {
				return err
			}
			session, err = pipe.Open(ctx, args[0])
			if err != nil {
				return err
			}
		}

		if err := applyEdits(session); err != nil {
			return err
		}

		plan, err := session.Plan(args[1], "")
		if err != nil {
			return err
		}

		fmt.Println(renderSegments(session.Model()))
		fmt.Println(renderPlan(plan))
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Show video metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(log.Logger, config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}

		info, err := pipe.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(renderInfo(info))
		return nil
	},
}

var guiCmd = &cobra.Command{
	Use:   "gui [input video]",
	Short: "Open the editor window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		initial := ""
		if len(args) == 1 {
			initial = args[0]
		}
		gui.Run(cmd.Context(), log.Logger, pipe, initial)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if util.FileExists(path) && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available choices",
}

var listAnchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "List overlay anchors",
	Run: func(cmd *cobra.Command, args []string) {
		for _, a := range overlays.Anchors() {
			fmt.Printf("%-13s %s\n", a, a.Position())
		}
	},
}

var listSpeedsCmd = &cobra.Command{
	Use:   "speeds",
	Short: "List speed factors",
	Run: func(cmd *cobra.Command, args []string) {
		labels := make([]string, 0, len(timeline.SpeedChoices()))
		for _, f := range timeline.SpeedChoices() {
			labels = append(labels, timeline.SpeedLabel(f))
		}
		fmt.Println(strings.Join(labels, "\n"))
	},
}

var listOverlaysCmd = &cobra.Command{
	Use:   "overlays",
	Short: "List named overlays from the config",
	Run: func(cmd *cobra.Command, args []string) {
		registry := config.FromContext(cmd.Context()).Registry()
		for _, name := range registry.List() {
			path, _ := registry.Get(name)
			fmt.Printf("%s\t%s\n", name, path)
		}
	},
}

// applyEdits runs the script edits, then the flag edits
func applyEdits(session *pipeline.Session) error {
	list, err := edits.build()
	if err != nil {
		return err
	}
	return session.ApplyAll(list)
}
