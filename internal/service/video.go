package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/robotcmd"
)

const videoProbeTimeout = 5 * time.Second

var (
	ErrVideoBusy      = errors.New("video server is starting or stopping")
	ErrRobotNotPaired = errors.New("robot is not paired")
)

// VideoService starts and stops web_video_server on the robot host. The
// starting and stopping states cover the window between issuing a command
// and the probe confirming its effect.
type VideoService struct {
	runner  CommandRunner
	store   *RobotStore
	catalog robotcmd.Catalog
	allow   robotcmd.AllowList
	events  repository.EventRepo
	opts    VideoOptions
	log     *logger.Logger

	mu      sync.Mutex
	state   models.VideoServerState
	message string
}

func NewVideoService(
	runner CommandRunner,
	store *RobotStore,
	catalog robotcmd.Catalog,
	allow robotcmd.AllowList,
	events repository.EventRepo,
	opts VideoOptions,
	log *logger.Logger,
) *VideoService {
	return &VideoService{
		runner:  runner,
		store:   store,
		catalog: catalog,
		allow:   allow,
		events:  events,
		opts:    opts,
		log:     logger.OrNop(log),
		state:   models.VideoOff,
	}
}

// VideoStatus refreshes the state from the host unless a transition is in flight.
func (v *VideoService) VideoStatus(ctx context.Context) models.VideoStatus {
	v.mu.Lock()
	before := v.state
	v.mu.Unlock()

	if !transitioning(before) && v.store.State().RobotPaired {
		running := v.probe(ctx)
		v.mu.Lock()
		if v.state == before {
			v.state = onOff(running)
		}
		v.mu.Unlock()
	}
	return v.status()
}

func (v *VideoService) StartVideo(ctx context.Context) (models.VideoStatus, error) {
	if !v.store.State().RobotPaired {
		return v.status(), ErrRobotNotPaired
	}
	if ok, err := v.begin(models.VideoOff, models.VideoOn, models.VideoStarting); !ok {
		return v.status(), err
	}

	cmd := v.catalog.VideoStart()
	err := cmd.Validate(v.allow)
	if err == nil {
		_, err = v.runner.Execute(ctx, cmd.String())
	}
	if err != nil {
		v.finish(models.VideoOff, "Failed to start video server: "+err.Error())
		recordEvent(ctx, v.events, v.log, models.EventError, "Video server failed to start", map[string]any{"err": err.Error()})
		return v.status(), err
	}

	_ = sleepCtx(ctx, v.opts.StartDelay)
	running := v.probe(ctx)
	msg := ""
	if !running {
		msg = "Video server did not start"
	}
	v.finish(onOff(running), msg)
	recordEvent(ctx, v.events, v.log, models.EventVideo, "Video server start requested", map[string]any{"running": running})
	return v.status(), nil
}

func (v *VideoService) StopVideo(ctx context.Context) (models.VideoStatus, error) {
	if ok, err := v.begin(models.VideoOn, models.VideoOff, models.VideoStopping); !ok {
		return v.status(), err
	}

	cmd := v.catalog.VideoStop()
	if err := cmd.Validate(v.allow); err != nil {
		v.finish(models.VideoOn, err.Error())
		return v.status(), err
	}
	// pkill exits non-zero when nothing matched; the probe decides the outcome.
	if res := v.runner.ExecuteSilent(ctx, cmd.String()); res.Failed {
		v.log.Debugw("video stop reported failure", "output", res.Output)
	}

	_ = sleepCtx(ctx, v.opts.StopDelay)
	running := v.probe(ctx)
	msg := ""
	if running {
		msg = "Video server is still running"
	}
	v.finish(onOff(running), msg)
	recordEvent(ctx, v.events, v.log, models.EventVideo, "Video server stop requested", map[string]any{"running": running})
	return v.status(), nil
}

// begin moves from the idle state from to the transition state via. A request
// that is already satisfied (state == done) succeeds without doing anything.
func (v *VideoService) begin(from, done, via models.VideoServerState) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch v.state {
	case from:
		v.state = via
		v.message = ""
		return true, nil
	case done:
		return false, nil
	default:
		return false, ErrVideoBusy
	}
}

func (v *VideoService) finish(state models.VideoServerState, msg string) {
	v.mu.Lock()
	v.state = state
	v.message = msg
	v.mu.Unlock()
}

func (v *VideoService) probe(ctx context.Context) bool {
	cmd := v.catalog.VideoProbe()
	if err := cmd.Validate(v.allow); err != nil {
		return false
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), videoProbeTimeout)
	defer cancel()
	res := v.runner.ExecuteSilent(pctx, cmd.String())
	return !res.Failed && strings.TrimSpace(res.Output) != ""
}

func (v *VideoService) status() models.VideoStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.VideoStatus{
		State:       v.state,
		StreamURL:   v.streamURL("stream"),
		SnapshotURL: v.streamURL("snapshot"),
		Message:     v.message,
	}
}

func (v *VideoService) streamURL(kind string) string {
	base := strings.TrimRight(v.opts.BaseURL, "/")
	if base == "" || v.opts.Topic == "" {
		return ""
	}
	return base + "/" + kind + "?topic=" + url.QueryEscape(v.opts.Topic)
}

func transitioning(s models.VideoServerState) bool {
	return s == models.VideoStarting || s == models.VideoStopping
}

func onOff(running bool) models.VideoServerState {
	if running {
		return models.VideoOn
	}
	return models.VideoOff
}
