package core

import "context"

type ndcKey struct{}

type threadKey struct{}

// ndcFrame is one level of the nested diagnostic context. Frames form an
// immutable linked stack so a pushed context never affects its parent.
type ndcFrame struct {
	parent  *ndcFrame
	message string
	// full is the space-joined message of this frame and all its parents.
	full  string
	depth int
}

// topFrame returns the innermost frame of ctx. Every reader goes through it
// so a nil ctx behaves like an empty stack.
func topFrame(ctx context.Context) *ndcFrame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(ndcKey{}).(*ndcFrame)
	return f
}

// PushNDC returns a child context whose diagnostic context has msg on top.
func PushNDC(ctx context.Context, msg string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	parent := topFrame(ctx)
	f := &ndcFrame{parent: parent, message: msg, full: msg, depth: 1}
	if parent != nil {
		f.full = parent.full + " " + msg
		f.depth = parent.depth + 1
	}
	return context.WithValue(ctx, ndcKey{}, f)
}

// PopNDC returns a context with the innermost frame removed along with the
// removed message. Popping an empty stack (or a nil ctx) returns ctx
// unchanged.
func PopNDC(ctx context.Context) (context.Context, string) {
	f := topFrame(ctx)
	if f == nil {
		return ctx, ""
	}
	return context.WithValue(ctx, ndcKey{}, f.parent), f.message
}

// NDC returns the full diagnostic context of ctx and whether one is set.
func NDC(ctx context.Context) (string, bool) {
	f := topFrame(ctx)
	if f == nil {
		return "", false
	}
	return f.full, true
}

// PeekNDC returns the innermost diagnostic message without removing it.
func PeekNDC(ctx context.Context) string {
	f := topFrame(ctx)
	if f == nil {
		return ""
	}
	return f.message
}

// NDCDepth reports how many frames are on the diagnostic stack.
func NDCDepth(ctx context.Context) int {
	f := topFrame(ctx)
	if f == nil {
		return 0
	}
	return f.depth
}

// NDCFrames returns the frames of the diagnostic stack, outermost first.
func NDCFrames(ctx context.Context) []string {
	top := topFrame(ctx)
	if top == nil {
		return nil
	}
	frames := make([]string, 0, top.depth)
	for f := top; f != nil; f = f.parent {
		frames = append(frames, f.message)
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames
}

// WithThread returns a context labelled with the given thread name. Go has
// no named threads, so goroutines that want a Thread column say so here.
func WithThread(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, threadKey{}, name)
}

// Thread returns the thread label carried by ctx, or "" if none.
func Thread(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(threadKey{}).(string)
	return name
}
