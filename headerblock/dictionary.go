// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

// Package headerblock implements the zlib-with-preset-dictionary codec used
// to compress and decompress SPDY header blocks.
package headerblock

// dictionaryText is the fixed preset dictionary primed into the deflate and
// inflate state before the first header block of a session is processed.
// It is built from the header names, status lines, and media types that
// appear most commonly on the wire, so that the very first compressed
// header block already benefits from a shared vocabulary with the peer.
//
// This one dictionary is used for both SPDY versions 2 and 3; no
// per-version dictionary is selected (see DESIGN.md).
const dictionaryText = "optionsgetheadpostputdeletetrace" +
	"acceptaccept-charsetaccept-encodingaccept-languageaccept-rangesageallow" +
	"authorizationcache-controlconnectioncontent-basecontent-encodingcontent-length" +
	"content-locationcontent-md5content-rangecontent-typedateetagexpectexpires" +
	"fromhostif-modified-sinceif-matchif-none-matchif-rangeif-unmodifiedsince" +
	"last-modifiedlocationmax-forwardspragmaproxy-authenticateproxy-authorization" +
	"rangerefererretry-afterserverteTransfer-encodingupgradeuser-agentvaryvia" +
	"warningwww-authenticatemethodgetstatus200 OKversionHTTP/1.1urlpublicset-cookie" +
	"keep-aliveorigin100101201202205206300302303304305306307402405406407408409410411412" +
	"413414415416417502504505203 Non-Authoritative Information204 No Content" +
	"301 Moved Permanently400 Bad Request401 Unauthorized403 Forbidden404 Not Found" +
	"500 Internal Server Error501 Not Implemented503 Service Unavailable" +
	"Jan Feb Mar Apr May Jun Jul Aug Sept Oct Nov Dec 00:00:00 Mon, Tue, Wed, Thu, Fri, " +
	"Sat, Sun, GMTchunked,text/html,image/png,image/jpg,image/gif,application/xml," +
	"application/xhtml+xml,text/plain,text/javascript,publicprivatemax-age=gzip,deflate,sdch" +
	"charset=utf-8charset=iso-8859-1,utf-,*,enq=0."

// Dictionary is the raw byte form of the preset dictionary, as handed to
// the deflate/inflate primitives.
var Dictionary = []byte(dictionaryText)
