package spore

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tansive/spore/internal/common/logtrace"
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

// FormContentType is forced on GET, POST, PUT and DELETE requests.
const FormContentType = "application/x-www-form-urlencoded; charset=utf-8"

type callState int

const (
	stateIdle callState = iota
	stateSpecResolved
	stateParamsBound
	stateCookiesPrepared
	stateMiddlewareApplied
	stateSent
	stateResponseParsed
)

func (s callState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateSpecResolved:
		return "SpecResolved"
	case stateParamsBound:
		return "ParamsBound"
	case stateCookiesPrepared:
		return "CookiesPrepared"
	case stateMiddlewareApplied:
		return "MiddlewareApplied"
	case stateSent:
		return "Sent"
	case stateResponseParsed:
		return "ResponseParsed"
	default:
		return "Unknown"
	}
}

type call struct {
	state  callState
	logger *zerolog.Logger
}

func (cl *call) advance(next callState) {
	cl.logger.Trace().Stringer("from", cl.state).Stringer("to", next).Msg("call state")
	cl.state = next
}

func (c *Client) dispatch(ctx context.Context, method string, args *request.Args) (*Response, error) {
	ctx, _ = logtrace.StartCall(ctx, c.logger, method)
	cl := &call{state: stateIdle, logger: log.Ctx(ctx)}
	c.response = nil

	ms, ok := c.spec.Method(method)
	if !ok {
		return nil, request.ErrUnknownMethod.Msg("unknown method: " + method).With("method", method)
	}
	cl.advance(stateSpecResolved)

	rc, err := request.Bind(method, c.spec, args, request.State{
		BaseURL:   c.baseURL,
		AccountID: c.accountID,
		Format:    c.format,
	})
	if err != nil {
		return nil, cl.fail(err)
	}
	c.lastRequest = rc
	cl.advance(stateParamsBound)

	rc.Cookies = c.cookieList()
	cookies, err := c.jar.Prepare(rc.Cookies)
	if err != nil {
		return nil, cl.fail(err)
	}
	cl.advance(stateCookiesPrepared)

	if err := c.pipeline.Run(rc, c.transport); err != nil {
		return nil, cl.fail(err)
	}
	cl.advance(stateMiddlewareApplied)

	for _, cookie := range cookies {
		c.transport.AddCookie(cookie)
	}
	reply, err := c.send(ctx, rc)
	if err != nil {
		return nil, cl.fail(err)
	}
	c.lastRequest = snapshot(rc)
	cl.advance(stateSent)

	if len(ms.ExpectedStatus) > 0 && !slices.Contains(ms.ExpectedStatus, reply.Status) {
		cl.logger.Warn().Int("status", reply.Status).Ints("expected", ms.ExpectedStatus).Msg("unexpected status")
	}
	resp, err := newResponse(reply.Status, reply.Header, reply.Body, rc.Format)
	if err != nil {
		return nil, cl.fail(err)
	}
	cl.advance(stateResponseParsed)

	c.response = resp
	rc.Params.Reset()
	cl.advance(stateIdle)
	cl.logger.Debug().Str("verb", rc.Verb).Str("path", rc.Path).Int("status", resp.Status).Msg("call completed")
	return resp, nil
}

func (cl *call) fail(err error) error {
	cl.logger.Debug().Err(err).Stringer("state", cl.state).Msg("call aborted")
	return err
}

// send dispatches rc on its verb. Unknown verbs are sent as GET without
// forcing the content type.
func (c *Client) send(ctx context.Context, rc *request.Context) (*transport.Reply, error) {
	switch rc.Verb {
	case "GET":
		c.transport.SetHeader("Content-Type", FormContentType)
		return c.transport.Get(ctx, rc.Path, rc.Params)
	case "POST":
		c.transport.SetHeader("Content-Type", FormContentType)
		return c.transport.Post(ctx, rc.Path, rc.RawBody)
	case "PUT":
		c.transport.SetHeader("Content-Type", FormContentType)
		return c.transport.Put(ctx, rc.Path, rc.RawBody)
	case "DELETE":
		c.transport.SetHeader("Content-Type", FormContentType)
		return c.transport.Delete(ctx, rc.Path, rc.Params)
	default:
		return c.transport.Get(ctx, rc.Path, rc.Params)
	}
}

func snapshot(rc *request.Context) *request.Context {
	cp := rc.Snapshot()
	return &cp
}
