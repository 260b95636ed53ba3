// Package classifier sorts discovered links into document, video and
// other categories.
//
// The rules are evaluated in order and the first match wins:
//
//  1. document URL patterns (".pdf" at the end or before "?"/"#", or
//     "download" next to "pdf")
//  2. video URL patterns (YouTube watch, short-link, embed and
//     privacy-enhanced hosts)
//  3. text hints: a size annotation next to "pdf" ("3MB pdf") means a
//     document, the word "watch" means a video
//
// Embeds served through the cdn.iframe.ly proxy are classified by the URL
// in their "url" query parameter and default to video.
//
// Classification never touches the network, so the same input always
// yields the same categories. Additional URL patterns can be configured in
// the classifier section of .linkaudit.yaml.
package classifier
