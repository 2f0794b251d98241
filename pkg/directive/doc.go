// Package directive binds data-* attributes in a dom.Document to reactive
// component instances.
//
// A Runtime scans the document depth first. For each element it declares
// the element's scope (data-scope), then installs every attribute whose
// name, minus the data- prefix, is registered:
//
//	<div data-scope="{open: false, name: ''}">
//	    <input data-model="name">
//	    <p data-show="open" data-text="name"></p>
//	    <button data-click-prevent="toggle">Toggle</button>
//	</div>
//
// Built-ins are show, text, class (also classname, since the HTML parser
// lower-cases data-className), model, disabled, required, click, submit,
// click-prevent and submit-prevent. data-ignore stops the scan and
// data-island marks a subtree that waits for Runtime.Mount.
//
// Each installation owns its effects and listeners. They are disposed
// when the element leaves the document, so nothing keeps running for
// removed markup.
//
// The process-wide registry starts empty; call Init once at startup to add
// the built-ins, and Reset in tests.
package directive
