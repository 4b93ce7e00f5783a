// Package extract turns raw material into candidate employee records.
//
// ProfileExtractor reads LinkedIn X-ray search hits: the person's name comes
// from the result title, the job title from the title or the snippet, and a
// keyword score decides the confidence tier.
//
// TextExtractor reads website text. It recognises appointment and
// introduction phrases ("Acme appoints Jane Smith as ..."), team cards,
// article bylines and bare names from image metadata, and filters out the
// business words such phrases tend to capture.
//
// Both extractors only produce candidates. Merging, validation and review
// happen later in the pipeline.
package extract
