package settlement

import (
	"errors"
	"testing"

	"github.com/markethub/settlement-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonForError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SkipReason
	}{
		{
			name: "already exists",
			err:  &domain.AlreadyExistsError{SellerID: "s1", SellerCode: "SEL-001"},
			want: SkipAlreadyExists,
		},
		{
			name: "processing error",
			err:  &domain.ProcessingError{SellerID: "s1", SellerCode: "SEL-001", Err: errors.New("boom")},
			want: SkipProcessingError,
		},
		{
			name: "write error",
			err:  &domain.WriteError{ChunkSize: 5, Err: errors.New("boom")},
			want: SkipWriteError,
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			want: SkipUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonForError(tt.err))
		})
	}
}

func TestSkipTracker_AlreadyExistsDoesNotCountAsFailure(t *testing.T) {
	tracker := NewSkipTracker(nopLogger{})

	tracker.RecordError(activeSeller("s1", "SEL-001", "0.1000", t),
		&domain.AlreadyExistsError{SellerID: "s1", SellerCode: "SEL-001"})
	tracker.RecordError(activeSeller("s2", "SEL-002", "0.1000", t),
		&domain.ProcessingError{SellerID: "s2", SellerCode: "SEL-002", Err: errors.New("fetch failed")})
	tracker.RecordError(activeSeller("s3", "SEL-003", "0.1000", t),
		errors.New("surprise"))

	assert.Len(t, tracker.Events(), 3)
	assert.Equal(t, 2, tracker.ErrorSkipCount())

	msgs := tracker.ErrorMessages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "SEL-002")
	assert.Equal(t, "surprise", msgs[1])
}

func TestSkipTracker_EventsReturnsCopy(t *testing.T) {
	tracker := NewSkipTracker(nopLogger{})
	tracker.RecordError(activeSeller("s1", "SEL-001", "0.1000", t), errors.New("boom"))

	events := tracker.Events()
	events[0].Message = "mutated"

	assert.Equal(t, "boom", tracker.Events()[0].Message)
}

func TestSkipTracker_Clear(t *testing.T) {
	tracker := NewSkipTracker(nopLogger{})
	tracker.RecordError(activeSeller("s1", "SEL-001", "0.1000", t), errors.New("boom"))

	tracker.Clear()

	assert.Empty(t, tracker.Events())
	assert.Zero(t, tracker.ErrorSkipCount())
}
