package main

import (
	"context"
	"fmt"
	"strings"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func newTeleopCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "teleop",
		Short: "Drive the robot with the keyboard (w/a/s/d, arrows, space to stop)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			robot := a.services.Robot.State()
			m := newTeleopModel(cmd.Context(), a.services.Teleop, robot)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, runErr := p.Run()

			// never leave the robot moving
			stopCtx := context.WithoutCancel(cmd.Context())
			if _, err := a.services.Teleop.Stop(stopCtx); err != nil && runErr == nil {
				return fmt.Errorf("final stop: %w", err)
			}
			return runErr
		},
	}
}

type teleopResultMsg struct {
	status models.TeleopStatus
	err    error
}

type teleopModel struct {
	ctx    context.Context
	teleop service.Teleop
	robot  models.RobotState
	status models.TeleopStatus
	err    error
	busy   bool
}

func newTeleopModel(ctx context.Context, t service.Teleop, robot models.RobotState) teleopModel {
	return teleopModel{ctx: ctx, teleop: t, robot: robot, status: t.TeleopStatus()}
}

func (m teleopModel) Init() tea.Cmd { return nil }

func (m teleopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		if _, ok := service.KeyDirection(msg.String()); !ok {
			return m, nil
		}
		// one publish in flight; extra presses are dropped like key repeat
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.pressCmd(msg.String())
	case teleopResultMsg:
		m.busy = false
		m.status = msg.status
		m.err = msg.err
	}
	return m, nil
}

func (m teleopModel) pressCmd(key string) tea.Cmd {
	return func() tea.Msg {
		st, err := m.teleop.HandleKey(m.ctx, key)
		return teleopResultMsg{status: st, err: err}
	}
}

func (m teleopModel) View() string {
	var b strings.Builder
	robot := "no robot selected"
	if m.robot.HasRobot() {
		robot = fmt.Sprintf("robot %d", m.robot.RobotNumber)
		if !m.robot.RobotPaired {
			robot += " (not paired)"
		}
	}
	b.WriteString(titleStyle.Render("Teleop: "+robot) + "\n\n")
	b.WriteString(labelStyle.Render("linear") + fmt.Sprintf("%+.2f m/s\n", m.status.Velocity.Linear))
	b.WriteString(labelStyle.Render("angular") + fmt.Sprintf("%+.2f rad/s\n", m.status.Velocity.Angular))

	status := okStyle.Render(m.status.Status)
	if m.err != nil {
		status = errStyle.Render(m.status.Status + ": " + m.err.Error())
	}
	b.WriteString(labelStyle.Render("status") + status)
	if m.status.LastCommand != "" {
		b.WriteString("\n" + labelStyle.Render("sent") + m.status.LastCommand)
	}

	help := helpStyle.Render("w/↑ forward  s/↓ back  a/← left  d/→ right  space stop  q quit")
	return boxStyle.Render(b.String()) + "\n" + help + "\n"
}
