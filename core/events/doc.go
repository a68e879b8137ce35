// Package events defines the typed wire contract exchanged with a realtime
// endpoint over a session's data channel.
//
// Every message is a JSON object with a `type` discriminant and an optional
// `event_id`. Each discriminant maps to exactly one Go type, so a message can
// never carry a field combination its kind does not allow.
//
// Client events (sent, never received):
//
//   - SessionUpdate (session.update): partial configuration push.
//   - InputAudioBufferAppend (input_audio_buffer.append): base64 PCM chunk.
//   - InputAudioBufferCommit (input_audio_buffer.commit): close the current
//     input turn.
//   - InputAudioBufferClear (input_audio_buffer.clear): discard buffered
//     input audio.
//   - ConversationItemCreate (conversation.item.create): inject a
//     conversation item, typically a user text message.
//   - ResponseCreate (response.create): request a model response, with an
//     optional override body.
//
// Server events (received, never sent):
//
//   - SessionCreated / SessionUpdated (session.created, session.updated):
//     informational configuration snapshots.
//   - InputAudioTranscriptionCompleted
//     (conversation.item.input_audio_transcription.completed): finalized
//     transcript of user speech.
//   - ResponseAudioTranscriptDone (response.audio_transcript.done):
//     finalized transcript of synthesized model speech.
//   - ResponseOutputItemDone (response.output_item.done): a completed output
//     item, possibly a function call.
//   - ResponseDone (response.done): response completion with token usage.
//   - ErrorEvent (error): endpoint-reported protocol error.
//   - Unknown: any discriminant this package does not know; carried through
//     as an opaque no-op so newer endpoints do not break older clients.
package events
